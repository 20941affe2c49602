package services

import (
	"fmt"

	"github.com/lumabot/lumabot-backend/internal/data/repos"
	"github.com/lumabot/lumabot-backend/internal/domain"
	"github.com/lumabot/lumabot-backend/internal/pkg/dbctx"
	apperrors "github.com/lumabot/lumabot-backend/internal/pkg/errors"
	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
)

type ConversationService interface {
	// ResolveConversation decides which conversation an inbound message
	// belongs to, in priority order: honor an explicit id (existence
	// checked, ownership deliberately not), resume the user's first
	// active conversation, or open a new one. At most one conversation
	// is created per call.
	ResolveConversation(dbc dbctx.Context, user *domain.User, explicitID *int64) (int64, error)

	// Reset marks the conversation inactive, preserving its history.
	Reset(dbc dbctx.Context, conversationID int64) error
}

type conversationService struct {
	log           *logger.Logger
	conversations repos.ConversationRepo
}

func NewConversationService(baseLog *logger.Logger, conversationRepo repos.ConversationRepo) ConversationService {
	return &conversationService{
		log:           baseLog.With("service", "ConversationService"),
		conversations: conversationRepo,
	}
}

func (s *conversationService) ResolveConversation(dbc dbctx.Context, user *domain.User, explicitID *int64) (int64, error) {
	if user == nil || user.ID <= 0 {
		return 0, fmt.Errorf("resolve conversation: %w: missing user", apperrors.ErrInvalidArgument)
	}

	if explicitID != nil {
		// Format is validated before any store access.
		if *explicitID <= 0 {
			return 0, fmt.Errorf("conversation id must be a positive integer: %w", apperrors.ErrInvalidArgument)
		}
		exists, err := s.conversations.Exists(dbc, *explicitID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, fmt.Errorf("conversation %d: %w", *explicitID, apperrors.ErrNotFound)
		}
		return *explicitID, nil
	}

	active, err := s.conversations.FindActiveForUser(dbc, user.ID)
	if err != nil {
		return 0, err
	}
	if active != nil {
		return active.ID, nil
	}

	created, err := s.conversations.Create(dbc)
	if err != nil {
		return 0, err
	}
	s.log.Info("Started new conversation", "conversation_id", created.ID, "user_id", user.ID)
	return created.ID, nil
}

func (s *conversationService) Reset(dbc dbctx.Context, conversationID int64) error {
	if conversationID <= 0 {
		return fmt.Errorf("conversation id must be a positive integer: %w", apperrors.ErrInvalidArgument)
	}
	exists, err := s.conversations.Exists(dbc, conversationID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("conversation %d: %w", conversationID, apperrors.ErrNotFound)
	}
	if err := s.conversations.SetActive(dbc, conversationID, false); err != nil {
		return err
	}
	s.log.Info("Conversation reset", "conversation_id", conversationID)
	return nil
}
