package app

import (
	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
	"github.com/lumabot/lumabot-backend/internal/services"
)

type Services struct {
	Identity     services.IdentityService
	Conversation services.ConversationService
	Relay        services.RelayService
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	identity := services.NewIdentityService(log, reposet.User)
	conversation := services.NewConversationService(log, reposet.Conversation)
	relay := services.NewRelayService(
		log,
		identity,
		conversation,
		reposet.Message,
		clients.Completion,
		cfg.CompletionTimeout,
	)

	return Services{
		Identity:     identity,
		Conversation: conversation,
		Relay:        relay,
	}
}
