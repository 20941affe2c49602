package app

import (
	"github.com/gin-gonic/gin"

	"github.com/lumabot/lumabot-backend/internal/handlers"
	"github.com/lumabot/lumabot-backend/internal/middleware"
	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
	"github.com/lumabot/lumabot-backend/internal/server"
)

type Handlers struct {
	Webhook *handlers.WebhookHandler
}

type Middleware struct {
	RequestID *middleware.RequestIDMiddleware
}

func wireHandlers(log *logger.Logger, serviceset Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Webhook: handlers.NewWebhookHandler(log, serviceset.Relay, clients.Delivery),
	}
}

func wireMiddleware(log *logger.Logger) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		RequestID: middleware.NewRequestIDMiddleware(log),
	}
}

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		WebhookHandler:      handlerset.Webhook,
		RequestIDMiddleware: middlewareset.RequestID,
		AllowOrigins:        cfg.AllowOrigins,
	})
}
