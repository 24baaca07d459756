// Package activeset enforces "at most one active record" over any collection
// of records that carry an active flag.
//
// Save runs inside the collection's lock: when the saved record is active,
// every other active record is demoted in the same transaction. Readers never
// fail because of a violated invariant; GetActive reports it and picks the
// most recently updated record.
package activeset

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/telecomnet/telecom-social/internal/metrics"
	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/retry"
)

// Record is an item of a single-active collection.
type Record interface {
	comparable
	RecordID() string
	Active() bool
	LastUpdated() time.Time
}

// Reader lists the records currently flagged active.
type Reader[T Record] interface {
	ListActive(ctx context.Context) ([]T, error)
}

// Collection is the transactional view Save works against.
type Collection[T Record] interface {
	Reader[T]
	DemoteActive(ctx context.Context, exceptID string, at time.Time) ([]string, error)
	Put(ctx context.Context, rec T, at time.Time) (T, error)
}

// Locker runs fn against the collection while holding its exclusive
// active-flag lock, inside one transaction.
type Locker[T Record] interface {
	WithActiveLock(ctx context.Context, fn func(c Collection[T]) error) error
}

// Enforcer applies the single-active invariant to one collection.
type Enforcer[T Record] struct {
	name   string
	reads  Reader[T]
	locker Locker[T]
	policy retry.Policy
	now    func() time.Time
	log    zerolog.Logger
}

// Option customizes an Enforcer.
type Option[T Record] func(*Enforcer[T])

// WithClock replaces time.Now.
func WithClock[T Record](now func() time.Time) Option[T] {
	return func(e *Enforcer[T]) { e.now = now }
}

// WithRetryPolicy replaces retry.DefaultPolicy.
func WithRetryPolicy[T Record](p retry.Policy) Option[T] {
	return func(e *Enforcer[T]) { e.policy = p }
}

// New builds an enforcer for the collection called name.
func New[T Record](name string, reads Reader[T], locker Locker[T], log zerolog.Logger, opts ...Option[T]) *Enforcer[T] {
	e := &Enforcer[T]{
		name:   name,
		reads:  reads,
		locker: locker,
		policy: retry.DefaultPolicy(),
		now:    time.Now,
		log:    log.With().Str("collection", name).Logger(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// GetActive returns the active record, or ok=false when none is active.
func (e *Enforcer[T]) GetActive(ctx context.Context) (rec T, ok bool, err error) {
	active, err := retry.Value(ctx, e.policy, e.name+".get_active", e.reads.ListActive)
	if err != nil {
		return rec, false, err
	}
	if len(active) == 0 {
		return rec, false, nil
	}

	newest := active[0]
	for _, r := range active[1:] {
		if r.LastUpdated().After(newest.LastUpdated()) {
			newest = r
		}
	}
	if len(active) > 1 {
		ids := make([]string, len(active))
		for i, r := range active {
			ids[i] = r.RecordID()
		}
		metrics.ActiveRecordAnomalies.WithLabelValues(e.name).Inc()
		e.log.Error().
			Int("active_count", len(active)).
			Strs("record_ids", ids).
			Str("chosen_id", newest.RecordID()).
			Msg("multiple active records found")
	}
	return newest, true, nil
}

// Save persists rec. An active rec demotes every other active record in the
// same transaction, so the last writer wins.
func (e *Enforcer[T]) Save(ctx context.Context, rec T) (T, error) {
	var zero T
	if rec == zero {
		return zero, model.Validation("record is required")
	}
	return retry.Value(ctx, e.policy, e.name+".save", func(ctx context.Context) (T, error) {
		var saved T
		err := e.locker.WithActiveLock(ctx, func(c Collection[T]) error {
			at := e.now().UTC().Truncate(time.Microsecond)
			if rec.Active() {
				demoted, err := c.DemoteActive(ctx, rec.RecordID(), at)
				if err != nil {
					return err
				}
				if len(demoted) > 0 {
					e.log.Info().Strs("demoted_ids", demoted).Msg("previous active record demoted")
				}
			}
			out, err := c.Put(ctx, rec, at)
			if err != nil {
				return err
			}
			saved = out
			return nil
		})
		return saved, err
	})
}

// Validate reports a Conflict when rec is active and a different record is
// already active. It is advisory: Save resolves the conflict by demotion.
func (e *Enforcer[T]) Validate(ctx context.Context, rec T) error {
	var zero T
	if rec == zero || !rec.Active() {
		return nil
	}
	current, ok, err := e.GetActive(ctx)
	if err != nil {
		return err
	}
	if ok && current.RecordID() != rec.RecordID() {
		return model.Conflict("another %s record (%s) is already active", e.name, current.RecordID())
	}
	return nil
}
