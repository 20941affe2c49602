package repos

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/lumabot/lumabot-backend/internal/domain"
	"github.com/lumabot/lumabot-backend/internal/pkg/dbctx"
	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
)

type ConversationRepo interface {
	Create(dbc dbctx.Context) (*domain.Conversation, error)
	Exists(dbc dbctx.Context, id int64) (bool, error)
	SetActive(dbc dbctx.Context, id int64, active bool) error
	// FindActiveForUser returns the lowest-id active conversation that
	// has at least one message authored by the user, or nil.
	FindActiveForUser(dbc dbctx.Context, userID int64) (*domain.Conversation, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: baseLog.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) Create(dbc dbctx.Context) (*domain.Conversation, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	row := &domain.Conversation{IsActive: true}
	if err := txx.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *conversationRepo) Exists(dbc dbctx.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("missing conversation id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *conversationRepo) SetActive(dbc dbctx.Context, id int64, active bool) error {
	if id <= 0 {
		return fmt.Errorf("missing conversation id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *conversationRepo) FindActiveForUser(dbc dbctx.Context, userID int64) (*domain.Conversation, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("missing user id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Conversation
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Conversation{}).
		Select("chat_conversation.*").
		Joins("JOIN chat_message m ON m.conversation_id = chat_conversation.id").
		Where("m.user_id = ? AND chat_conversation.is_active = ?", userID, true).
		Group("chat_conversation.id").
		Order("chat_conversation.id ASC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
