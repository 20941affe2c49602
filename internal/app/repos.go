package app

import (
	"gorm.io/gorm"

	"github.com/lumabot/lumabot-backend/internal/data/repos"
	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
)

type Repos struct {
	User         repos.UserRepo
	Conversation repos.ConversationRepo
	Message      repos.MessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Conversation: repos.NewConversationRepo(db, log),
		Message:      repos.NewMessageRepo(db, log),
	}
}
