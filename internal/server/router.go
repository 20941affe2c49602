package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lumabot/lumabot-backend/internal/handlers"
	"github.com/lumabot/lumabot-backend/internal/middleware"
)

type RouterConfig struct {
	WebhookHandler      *handlers.WebhookHandler
	RequestIDMiddleware *middleware.RequestIDMiddleware
	AllowOrigins        []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	if cfg.RequestIDMiddleware != nil {
		router.Use(cfg.RequestIDMiddleware.Attach())
	}

	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/webhook", cfg.WebhookHandler.Handle)

	return router
}
