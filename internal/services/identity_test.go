package services

import (
	"context"
	"testing"

	"github.com/lumabot/lumabot-backend/internal/data/repos"
	"github.com/lumabot/lumabot-backend/internal/data/repos/testutil"
	"github.com/lumabot/lumabot-backend/internal/domain"
	"github.com/lumabot/lumabot-backend/internal/pkg/dbctx"
)

func TestResolveUserByPhoneIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	svc := NewIdentityService(testutil.Logger(t), repos.NewUserRepo(db, testutil.Logger(t)))
	dbc := dbctx.New(context.Background())

	first, err := svc.ResolveUser(dbc, ResolveUserInput{Phone: "+15551234567"})
	if err != nil {
		t.Fatalf("ResolveUser first: %v", err)
	}
	if first.Phone == nil || *first.Phone != "+15551234567" {
		t.Fatalf("ResolveUser phone=%v, want +15551234567", first.Phone)
	}

	second, err := svc.ResolveUser(dbc, ResolveUserInput{Phone: "+15551234567"})
	if err != nil {
		t.Fatalf("ResolveUser second: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("find-or-create not idempotent: ids %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("user rows = %d, want 1", count)
	}
}

func TestResolveUserExplicitID(t *testing.T) {
	db := testutil.DB(t)
	svc := NewIdentityService(testutil.Logger(t), repos.NewUserRepo(db, testutil.Logger(t)))
	dbc := dbctx.New(context.Background())

	seeded := &domain.User{}
	if err := db.Create(seeded).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	resolved, err := svc.ResolveUser(dbc, ResolveUserInput{ExplicitID: &seeded.ID})
	if err != nil || resolved.ID != seeded.ID {
		t.Fatalf("ResolveUser explicit: user=%+v err=%v", resolved, err)
	}

	// A stale id heals into a fresh row carrying the display name.
	stale := seeded.ID + 1000
	healed, err := svc.ResolveUser(dbc, ResolveUserInput{ExplicitID: &stale, DisplayName: "bob"})
	if err != nil {
		t.Fatalf("ResolveUser stale: %v", err)
	}
	if healed.ID == stale {
		t.Fatalf("stale id should not be reused, got %d", healed.ID)
	}
	if healed.Username == nil || *healed.Username != "bob" {
		t.Fatalf("healed username=%v, want bob", healed.Username)
	}
}

func TestResolveUserAnonymous(t *testing.T) {
	db := testutil.DB(t)
	svc := NewIdentityService(testutil.Logger(t), repos.NewUserRepo(db, testutil.Logger(t)))
	dbc := dbctx.New(context.Background())

	created, err := svc.ResolveUser(dbc, ResolveUserInput{})
	if err != nil {
		t.Fatalf("ResolveUser anonymous: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("anonymous user id=%d, want positive", created.ID)
	}
	if created.Username != nil || created.Phone != nil {
		t.Fatalf("anonymous user has unexpected fields: %+v", created)
	}
}
