package repos

import (
	"context"
	"testing"

	"github.com/lumabot/lumabot-backend/internal/data/repos/testutil"
	"github.com/lumabot/lumabot-backend/internal/domain"
	"github.com/lumabot/lumabot-backend/internal/pkg/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	phone := "+15551234567"
	email := "user@example.com"
	name := "alice"

	created, err := repo.Create(dbc, &domain.User{Phone: &phone, Email: &email, Username: &name})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("Create assigned id=%d, want positive", created.ID)
	}

	byID, err := repo.GetByID(dbc, created.ID)
	if err != nil || byID == nil || byID.ID != created.ID {
		t.Fatalf("GetByID: user=%+v err=%v", byID, err)
	}

	byPhone, err := repo.GetByPhone(dbc, phone)
	if err != nil || byPhone == nil || byPhone.ID != created.ID {
		t.Fatalf("GetByPhone: user=%+v err=%v", byPhone, err)
	}

	byEmail, err := repo.GetByEmail(dbc, email)
	if err != nil || byEmail == nil || byEmail.ID != created.ID {
		t.Fatalf("GetByEmail: user=%+v err=%v", byEmail, err)
	}

	missing, err := repo.GetByID(dbc, created.ID+1000)
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByID missing returned %+v, want nil", missing)
	}

	missingPhone, err := repo.GetByPhone(dbc, "+19990000000")
	if err != nil || missingPhone != nil {
		t.Fatalf("GetByPhone missing: user=%+v err=%v", missingPhone, err)
	}
}
