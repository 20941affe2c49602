package app

import (
	"strings"
	"time"

	"github.com/lumabot/lumabot-backend/internal/pkg/envutil"
)

type Config struct {
	Port              string
	AllowOrigins      []string
	CompletionTimeout time.Duration
	OutboundDelivery  bool
}

func LoadConfig() Config {
	origins := strings.Split(envutil.String("CORS_ALLOW_ORIGINS", "http://localhost:3000"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		Port:              envutil.String("PORT", "5001"),
		AllowOrigins:      origins,
		CompletionTimeout: time.Duration(envutil.Int("COMPLETION_TIMEOUT_SECONDS", 60)) * time.Second,
		OutboundDelivery:  envutil.String("TWILIO_ACCOUNT_SID", "") != "",
	}
}
