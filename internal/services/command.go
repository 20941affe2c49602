package services

import (
	"strings"

	"github.com/lumabot/lumabot-backend/internal/pkg/dbctx"
)

const resetCommand = "reset conversation"

// tryHandleCommand recognizes control commands embedded in the message
// body and short-circuits the normal relay flow. The only command today
// is a conversation reset, which requires an explicit conversation id.
func (s *relayService) tryHandleCommand(dbc dbctx.Context, in InboundMessage) (bool, *InboundResult, error) {
	body := strings.ToLower(strings.TrimSpace(in.Body))
	if body != resetCommand || in.ConversationID == nil {
		return false, nil, nil
	}

	if err := s.conversations.Reset(dbc, *in.ConversationID); err != nil {
		return true, nil, err
	}
	return true, &InboundResult{
		Reset:          true,
		Reply:          "Conversation has been reset.",
		ConversationID: *in.ConversationID,
	}, nil
}
