package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumabot/lumabot-backend/internal/clients/twilio"
	apperrors "github.com/lumabot/lumabot-backend/internal/pkg/errors"
	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
	"github.com/lumabot/lumabot-backend/internal/services"
)

const whatsappPrefix = "whatsapp:"

type WebhookHandler struct {
	log      *logger.Logger
	relay    services.RelayService
	delivery twilio.Client
}

// NewWebhookHandler wires the inbound webhook. delivery may be nil when
// no outbound channel is configured; replies are then returned in the
// HTTP response only.
func NewWebhookHandler(baseLog *logger.Logger, relay services.RelayService, delivery twilio.Client) *WebhookHandler {
	return &WebhookHandler{
		log:      baseLog.With("handler", "WebhookHandler"),
		relay:    relay,
		delivery: delivery,
	}
}

// webhookRequest tolerates the loosely typed payloads the endpoint has
// always received: ids arrive as strings or numbers depending on the
// caller.
type webhookRequest struct {
	Message        string `json:"message"`
	UserID         any    `json:"userId"`
	Username       string `json:"username"`
	ConversationID any    `json:"conversationId"`
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	in, replyAddress, err := h.parseRequest(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.relay.HandleInbound(c.Request.Context(), in)
	if err != nil {
		status, code := statusForError(err)
		RespondError(c, status, code, err)
		return
	}

	if result.Reset {
		c.String(http.StatusOK, result.Reply)
		return
	}

	if replyAddress != "" && h.delivery != nil {
		go h.deliver(replyAddress, result.Reply)
	}

	RespondOK(c, gin.H{
		"message":        result.Reply,
		"userId":         result.UserID,
		"conversationId": result.ConversationID,
	})
}

// parseRequest normalizes either a JSON payload or a Twilio-style form
// post into the strongly typed inbound message. All format validation
// happens here, before any store access.
func (h *WebhookHandler) parseRequest(c *gin.Context) (services.InboundMessage, string, error) {
	var in services.InboundMessage
	var replyAddress string

	if strings.Contains(c.ContentType(), "json") {
		var req webhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return in, "", fmt.Errorf("malformed request body: %w", err)
		}
		in.Body = strings.TrimSpace(req.Message)
		in.DisplayName = strings.TrimSpace(req.Username)

		sender, err := normalizeID(req.UserID, "userId")
		if err != nil {
			return in, "", err
		}
		switch v := sender.(type) {
		case int64:
			in.ExplicitUserID = &v
		case string:
			in.Phone, replyAddress = normalizeAddress(v)
		}

		conversationID, err := normalizeID(req.ConversationID, "conversationId")
		if err != nil {
			return in, "", err
		}
		if id, ok := conversationID.(int64); ok {
			in.ConversationID = &id
		} else if str, ok := conversationID.(string); ok && str != "" {
			return in, "", fmt.Errorf("invalid conversationId provided")
		}
		return in, replyAddress, nil
	}

	// Twilio webhook form fields.
	in.Body = strings.TrimSpace(c.PostForm("Body"))
	in.DisplayName = strings.TrimSpace(c.PostForm("ProfileName"))
	in.Phone, replyAddress = normalizeAddress(c.PostForm("From"))

	if raw := strings.TrimSpace(c.PostForm("conversationId")); raw != "" {
		if !isDigits(raw) {
			return in, "", fmt.Errorf("invalid conversationId provided")
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return in, "", fmt.Errorf("invalid conversationId provided")
		}
		in.ConversationID = &id
	}
	return in, replyAddress, nil
}

// normalizeID accepts the id representations seen in the wild: absent,
// a JSON number, or a numeric string. Positive integers come back as
// int64; anything else non-empty comes back as the raw string for the
// caller to interpret (a sender address) or reject (a conversation id).
func normalizeID(v any, field string) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case float64:
		id := int64(val)
		if float64(id) != val || id <= 0 {
			return nil, fmt.Errorf("invalid %s provided", field)
		}
		return id, nil
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return nil, nil
		}
		// Phone-style addresses ("+1555...", "whatsapp:+1555...") must
		// not be mistaken for numeric ids.
		if isDigits(trimmed) {
			id, err := strconv.ParseInt(trimmed, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid %s provided", field)
			}
			return id, nil
		}
		return trimmed, nil
	default:
		return nil, fmt.Errorf("invalid %s provided", field)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normalizeAddress strips a channel prefix from a sender address. The
// second return is the original channel address to reply to, empty for
// plain senders.
func normalizeAddress(raw string) (phone string, replyAddress string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ""
	}
	if strings.HasPrefix(trimmed, whatsappPrefix) {
		return strings.TrimPrefix(trimmed, whatsappPrefix), trimmed
	}
	return trimmed, ""
}

func (h *WebhookHandler) deliver(toAddress, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := h.delivery.SendWhatsApp(ctx, strings.TrimPrefix(toAddress, whatsappPrefix), body); err != nil {
		h.log.Warn("Outbound delivery failed", "to", toAddress, "error", err.Error())
	}
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
