package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/store"
	"github.com/telecomnet/telecom-social/internal/validate"
)

// ProfileService keeps exactly one profile per identity.
type ProfileService struct {
	base
}

func NewProfileService(db store.DB, log zerolog.Logger, opts ...Option) *ProfileService {
	return &ProfileService{base: newBase(db, log, "profiles", opts)}
}

// OnIdentityCreated creates the empty profile of a new identity within the
// caller's transaction. An existing profile is left alone.
func (s *ProfileService) OnIdentityCreated(ctx context.Context, tx store.Store, userID string, at time.Time) error {
	_, err := tx.Profiles().Get(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	_, err = tx.Profiles().Create(ctx, &model.Profile{UserID: userID, UpdatedAt: at})
	return err
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := read(ctx, &s.base, "profiles.get", func(ctx context.Context) (*model.Profile, error) {
		return s.db.Profiles().Get(ctx, userID)
	})
	if err != nil {
		return nil, notFound(err, "profile for %s not found", userID)
	}
	return p, nil
}

func (s *ProfileService) UpdateBio(ctx context.Context, userID, bio string) (*model.Profile, error) {
	if err := validate.Bio(bio); err != nil {
		return nil, model.Validation("%s", err.Error())
	}
	var out *model.Profile
	err := s.inTx(ctx, "profiles.update", func(tx store.Tx) error {
		p, err := tx.Profiles().UpdateBio(ctx, userID, bio, s.clock())
		if err != nil {
			return notFound(err, "profile for %s not found", userID)
		}
		out = p
		return nil
	})
	return out, err
}
