package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/store"
)

var fast = Policy{MaxAttempts: 3, BaseInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func transient() error { return fmt.Errorf("begin: %w: database is locked", store.ErrTransient) }

func TestDo_RecoversFromTransientFailure(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, "test", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return transient()
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDo_ExhaustionSurfacesUnavailable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, "test", func(ctx context.Context) error {
		calls++
		return transient()
	})
	require.ErrorIs(t, err, model.ErrUnavailable)
	require.ErrorIs(t, err, store.ErrTransient)
	require.Equal(t, 3, calls, "attempts must be bounded by the policy")
}

func TestDo_DomainErrorsAreNotRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, "test", func(ctx context.Context) error {
		calls++
		return model.Conflict("already pending")
	})
	require.ErrorIs(t, err, model.ErrConflict)
	require.False(t, errors.Is(err, model.ErrUnavailable))
	require.Equal(t, 1, calls)
}

func TestDo_SingleAttemptPolicy(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxAttempts: 0}, "test", func(ctx context.Context) error {
		calls++
		return transient()
	})
	require.ErrorIs(t, err, model.ErrUnavailable)
	require.Equal(t, 1, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{MaxAttempts: 10, BaseInterval: 50 * time.Millisecond}, "test", func(ctx context.Context) error {
		calls++
		cancel()
		return transient()
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestValue_ReturnsResult(t *testing.T) {
	calls := 0
	got, err := Value(context.Background(), fast, "test", func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", transient()
		}
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", got)
}
