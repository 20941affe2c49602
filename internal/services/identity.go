package services

import (
	"strings"

	"github.com/lumabot/lumabot-backend/internal/data/repos"
	"github.com/lumabot/lumabot-backend/internal/domain"
	"github.com/lumabot/lumabot-backend/internal/pkg/dbctx"
	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
)

// ResolveUserInput carries the normalized sender identity of an inbound
// message. At most one of ExplicitID / Phone is expected to be set.
type ResolveUserInput struct {
	ExplicitID  *int64
	Phone       string
	DisplayName string
}

type IdentityService interface {
	// ResolveUser finds or creates the user record an inbound message
	// belongs to. An explicit id is trusted but healed with a fresh row
	// when stale; a phone is a find-or-create key; with neither, a new
	// user is created from the optional display name alone.
	ResolveUser(dbc dbctx.Context, in ResolveUserInput) (*domain.User, error)

	// GetUserByEmail is an alternate lookup path; it is not part of the
	// inbound webhook flow.
	GetUserByEmail(dbc dbctx.Context, email string) (*domain.User, error)
}

type identityService struct {
	log   *logger.Logger
	users repos.UserRepo
}

func NewIdentityService(baseLog *logger.Logger, userRepo repos.UserRepo) IdentityService {
	return &identityService{
		log:   baseLog.With("service", "IdentityService"),
		users: userRepo,
	}
}

func (s *identityService) ResolveUser(dbc dbctx.Context, in ResolveUserInput) (*domain.User, error) {
	if in.ExplicitID != nil && *in.ExplicitID > 0 {
		found, err := s.users.GetByID(dbc, *in.ExplicitID)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
		// Stale id from the caller: heal by creating a fresh row from
		// whatever secondary fields we have.
		s.log.Info("Explicit user id not found, creating new user", "explicit_id", *in.ExplicitID)
		return s.createUser(dbc, "", in.DisplayName)
	}

	phone := strings.TrimSpace(in.Phone)
	if phone != "" {
		found, err := s.users.GetByPhone(dbc, phone)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
		return s.createUser(dbc, phone, in.DisplayName)
	}

	return s.createUser(dbc, "", in.DisplayName)
}

func (s *identityService) GetUserByEmail(dbc dbctx.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(dbc, strings.TrimSpace(email))
}

func (s *identityService) createUser(dbc dbctx.Context, phone, displayName string) (*domain.User, error) {
	user := &domain.User{}
	if phone != "" {
		user.Phone = &phone
	}
	if name := strings.TrimSpace(displayName); name != "" {
		user.Username = &name
	}
	created, err := s.users.Create(dbc, user)
	if err != nil {
		return nil, err
	}
	s.log.Info("Created new user", "user_id", created.ID)
	return created, nil
}
