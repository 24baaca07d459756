// Package retry runs storage operations with bounded exponential backoff.
// Only errors marked transient by the store are retried.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/telecomnet/telecom-social/internal/metrics"
	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/store"
)

// Policy bounds the retry loop. MaxAttempts counts the first try.
type Policy struct {
	MaxAttempts  int
	BaseInterval time.Duration
	MaxInterval  time.Duration
}

// DefaultPolicy makes three attempts.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseInterval: 20 * time.Millisecond, MaxInterval: 500 * time.Millisecond}
}

func (p Policy) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseInterval
	exp.Multiplier = 2
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	exp.MaxElapsedTime = 0
	exp.Reset()

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Do runs fn until it succeeds, returns a non-transient error, or the policy
// is exhausted. Exhaustion yields an error matching model.ErrUnavailable.
func Do(ctx context.Context, p Policy, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	err := backoff.Retry(func() error {
		if attempt > 0 {
			metrics.StorageRetries.WithLabelValues(op).Inc()
		}
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !store.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, p.newBackOff(ctx))

	if err != nil && store.IsTransient(err) {
		metrics.StorageExhausted.WithLabelValues(op).Inc()
		return model.Unavailable(err)
	}
	return err
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
