package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/store"
	"github.com/telecomnet/telecom-social/internal/validate"
)

// UserService handles identity operations. Creating an identity also creates
// its profile in the same transaction.
type UserService struct {
	base
	profiles *ProfileService
}

func NewUserService(db store.DB, profiles *ProfileService, log zerolog.Logger, opts ...Option) *UserService {
	return &UserService{base: newBase(db, log, "users", opts), profiles: profiles}
}

func (s *UserService) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if u == nil {
		return nil, model.Validation("user is required")
	}
	in := *u
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.CreateUser(in.Username, in.Email, in.FirstName, in.LastName); err != nil {
		return nil, model.Validation("%s", err.Error())
	}
	if in.UserID == "" {
		in.UserID = uuid.New().String()
	}

	var out *model.User
	err := s.inTx(ctx, "users.create", func(tx store.Tx) error {
		now := s.clock()
		in.CreatedAt = now
		created, err := tx.Users().Create(ctx, &in)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return model.Conflict("username or email already taken")
			}
			return err
		}
		if err := s.profiles.OnIdentityCreated(ctx, tx, created.UserID, now); err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", out.UserID).Str("username", out.Username).Msg("user created")
	return out, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	u, err := read(ctx, &s.base, "users.get", func(ctx context.Context) (*model.User, error) {
		return s.db.Users().Get(ctx, userID)
	})
	if err != nil {
		return nil, notFound(err, "user %s not found", userID)
	}
	return u, nil
}

// ListUsers returns everyone except viewerID, ordered by username.
func (s *UserService) ListUsers(ctx context.Context, viewerID string, limit int) ([]*model.User, error) {
	return read(ctx, &s.base, "users.list", func(ctx context.Context) ([]*model.User, error) {
		return s.db.Users().List(ctx, viewerID, clampLimit(limit))
	})
}

// Exists reports whether userID names an identity.
func (s *UserService) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := s.GetUser(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, model.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
