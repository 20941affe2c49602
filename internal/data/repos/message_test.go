package repos

import (
	"context"
	"testing"
	"time"

	"github.com/lumabot/lumabot-backend/internal/data/repos/testutil"
	"github.com/lumabot/lumabot-backend/internal/domain"
	"github.com/lumabot/lumabot-backend/internal/pkg/dbctx"
)

func TestMessageRepoOrdering(t *testing.T) {
	db := testutil.DB(t)
	repo := NewMessageRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	conv := &domain.Conversation{IsActive: true}
	if err := db.Create(conv).Error; err != nil {
		t.Fatalf("seed conversation: %v", err)
	}

	empty, err := repo.ListByConversation(dbc, conv.ID)
	if err != nil {
		t.Fatalf("ListByConversation empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("empty conversation returned %d rows", len(empty))
	}

	now := time.Now().UTC()
	rows := []*domain.Message{
		{ConversationID: conv.ID, UserID: 1, Content: "Hi", Role: domain.RoleUser, SentAt: now},
		{ConversationID: conv.ID, UserID: 1, Content: "Hello!", Role: domain.RoleAssistant, SentAt: now.Add(time.Millisecond)},
		{ConversationID: conv.ID, UserID: 1, Content: "How are you?", Role: domain.RoleUser, SentAt: now.Add(time.Second)},
	}
	if _, err := repo.Create(dbc, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	listed, err := repo.ListByConversation(dbc, conv.ID)
	if err != nil {
		t.Fatalf("ListByConversation: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("ListByConversation returned %d rows, want 3", len(listed))
	}
	wantContent := []string{"Hi", "Hello!", "How are you?"}
	for i, row := range listed {
		if row.Content != wantContent[i] {
			t.Fatalf("row %d content %q, want %q", i, row.Content, wantContent[i])
		}
	}
}
