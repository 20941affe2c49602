package app

import (
	"fmt"

	"github.com/lumabot/lumabot-backend/internal/clients/openai"
	"github.com/lumabot/lumabot-backend/internal/clients/twilio"
	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
)

type Clients struct {
	Completion openai.Client
	Delivery   twilio.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	completion, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Outbound delivery is optional: without Twilio credentials the
	// reply is returned in the HTTP response only.
	var delivery twilio.Client
	if cfg.OutboundDelivery {
		d, err := twilio.NewFromEnv(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init twilio client: %w", err)
		}
		delivery = d
	}

	return Clients{
		Completion: completion,
		Delivery:   delivery,
	}, nil
}
