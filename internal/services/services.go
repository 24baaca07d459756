package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/retry"
	"github.com/telecomnet/telecom-social/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Option customizes a service.
type Option func(*base)

// WithClock replaces time.Now. Tests freeze it to force same-instant races.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// WithRetryPolicy bounds the retries of transient storage failures.
func WithRetryPolicy(p retry.Policy) Option {
	return func(b *base) { b.policy = p }
}

// base carries what every service needs.
type base struct {
	db     store.DB
	policy retry.Policy
	now    func() time.Time
	log    zerolog.Logger
}

func newBase(db store.DB, log zerolog.Logger, component string, opts []Option) base {
	b := base{
		db:     db,
		policy: retry.DefaultPolicy(),
		now:    time.Now,
		log:    log.With().Str("component", component).Logger(),
	}
	for _, o := range opts {
		o(&b)
	}
	return b
}

// clock returns the current time at storage precision.
func (b *base) clock() time.Time {
	return b.now().UTC().Truncate(time.Microsecond)
}

// inTx runs fn in one transaction, retrying the whole transaction on
// transient failures.
func (b *base) inTx(ctx context.Context, op string, fn func(tx store.Tx) error) error {
	return retry.Do(ctx, b.policy, op, func(ctx context.Context) error {
		return b.db.InTx(ctx, fn)
	})
}

// read runs a read-only storage call under the retry policy.
func read[T any](ctx context.Context, b *base, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	return retry.Value(ctx, b.policy, op, fn)
}

// notFound turns store.ErrNotFound into a model NotFound error and passes
// anything else through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return model.NotFound(format, args...)
	}
	return err
}

// requireUsers fails with NotFound naming the first id that has no identity.
func requireUsers(ctx context.Context, s store.Store, ids ...string) (map[string]*model.User, error) {
	users, err := s.Users().GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return nil, model.NotFound("user %s not found", id)
		}
	}
	return users, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}

func requireID(field, v string) error {
	if v == "" {
		return model.Validation("%s is required", field)
	}
	return nil
}
