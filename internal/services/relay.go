package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lumabot/lumabot-backend/internal/clients/openai"
	"github.com/lumabot/lumabot-backend/internal/data/repos"
	"github.com/lumabot/lumabot-backend/internal/domain"
	"github.com/lumabot/lumabot-backend/internal/pkg/dbctx"
	apperrors "github.com/lumabot/lumabot-backend/internal/pkg/errors"
	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
)

// FallbackReply is returned whenever the completion API fails or times
// out, so the conversation is never left without a response.
const FallbackReply = "Sorry, I couldn't process that message."

// InboundMessage is the normalized inbound payload after boundary
// validation; the loosely typed webhook fields never reach the core.
type InboundMessage struct {
	Body           string
	ExplicitUserID *int64
	Phone          string
	DisplayName    string
	ConversationID *int64
}

type InboundResult struct {
	Reset          bool
	Reply          string
	UserID         int64
	ConversationID int64
}

type RelayService interface {
	// HandleInbound runs the full relay flow for one inbound message:
	// command intercept, identity and conversation resolution, context
	// assembly, completion, and turn commit.
	HandleInbound(ctx context.Context, in InboundMessage) (*InboundResult, error)
}

type relayService struct {
	log           *logger.Logger
	identity      IdentityService
	conversations ConversationService
	messages      repos.MessageRepo
	completion    openai.Client

	completionTimeout time.Duration
	senderLocks       *keyedMutex
}

func NewRelayService(
	baseLog *logger.Logger,
	identityService IdentityService,
	conversationService ConversationService,
	messageRepo repos.MessageRepo,
	completionClient openai.Client,
	completionTimeout time.Duration,
) RelayService {
	if completionTimeout <= 0 {
		completionTimeout = 60 * time.Second
	}
	return &relayService{
		log:               baseLog.With("service", "RelayService"),
		identity:          identityService,
		conversations:     conversationService,
		messages:          messageRepo,
		completion:        completionClient,
		completionTimeout: completionTimeout,
		senderLocks:       newKeyedMutex(),
	}
}

func (s *relayService) HandleInbound(ctx context.Context, in InboundMessage) (*InboundResult, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("empty message body: %w", apperrors.ErrInvalidArgument)
	}
	dbc := dbctx.New(ctx)

	if handled, result, err := s.tryHandleCommand(dbc, in); handled {
		return result, err
	}

	unlock := s.senderLocks.Lock(senderKey(in))
	defer unlock()

	user, err := s.identity.ResolveUser(dbc, ResolveUserInput{
		ExplicitID:  in.ExplicitUserID,
		Phone:       in.Phone,
		DisplayName: in.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	conversationID, err := s.conversations.ResolveConversation(dbc, user, in.ConversationID)
	if err != nil {
		return nil, err
	}

	history, err := s.assemble(dbc, conversationID)
	if err != nil {
		return nil, err
	}

	reply := s.generateReply(ctx, history, in.Body)

	if err := s.commit(dbc, conversationID, user.ID, in.Body, reply); err != nil {
		return nil, err
	}

	return &InboundResult{
		Reply:          reply,
		UserID:         user.ID,
		ConversationID: conversationID,
	}, nil
}

// assemble fetches the ordered history of a conversation as prompt
// turns. An empty history is valid: it is the first turn of a new
// conversation, not an error.
func (s *relayService) assemble(dbc dbctx.Context, conversationID int64) ([]domain.Turn, error) {
	rows, err := s.messages.ListByConversation(dbc, conversationID)
	if err != nil {
		return nil, err
	}
	turns := make([]domain.Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, domain.Turn{Role: row.Role, Content: row.Content})
	}
	return turns, nil
}

// generateReply builds the prompt as history plus the new user turn and
// delegates to the completion client. Upstream failures and timeouts
// are absorbed into the fixed fallback reply.
func (s *relayService) generateReply(ctx context.Context, history []domain.Turn, userMessage string) string {
	turns := make([]domain.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, domain.Turn{Role: domain.RoleUser, Content: userMessage})

	completionCtx, cancel := context.WithTimeout(ctx, s.completionTimeout)
	defer cancel()

	reply, err := s.completion.Complete(completionCtx, turns)
	if err != nil {
		s.log.Warn("Completion failed, using fallback reply", "error", err.Error())
		return FallbackReply
	}
	return reply
}

// commit appends exactly two rows, the user turn then the assistant
// turn. The assistant timestamp is nudged forward so it sorts strictly
// after the user turn on later reads.
func (s *relayService) commit(dbc dbctx.Context, conversationID, userID int64, userMessage, reply string) error {
	now := time.Now().UTC()
	_, err := s.messages.Create(dbc, []*domain.Message{
		{
			ConversationID: conversationID,
			UserID:         userID,
			Content:        userMessage,
			Role:           domain.RoleUser,
			SentAt:         now,
		},
		{
			ConversationID: conversationID,
			UserID:         userID,
			Content:        reply,
			Role:           domain.RoleAssistant,
			SentAt:         now.Add(time.Millisecond),
		},
	})
	return err
}

func senderKey(in InboundMessage) string {
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		return "phone:" + phone
	}
	if in.ExplicitUserID != nil && *in.ExplicitUserID > 0 {
		return "user:" + strconv.FormatInt(*in.ExplicitUserID, 10)
	}
	// Anonymous senders always get a fresh user; no contention to guard.
	return "anon"
}
