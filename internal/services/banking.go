package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/telecomnet/telecom-social/internal/activeset"
	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/store"
	"github.com/telecomnet/telecom-social/internal/validate"
)

// BankingCollection names the banking records' active-flag lock.
const BankingCollection = "banking_details"

// BankingService manages the platform banking records. At most one of them
// is active; activating a record demotes the previous one.
type BankingService struct {
	base
	active *activeset.Enforcer[*model.BankingDetails]
}

func NewBankingService(db store.DB, log zerolog.Logger, opts ...Option) *BankingService {
	s := &BankingService{base: newBase(db, log, "banking", opts)}
	s.active = activeset.New[*model.BankingDetails](BankingCollection, db.Banking(), bankingLocker{db: db}, log,
		activeset.WithClock[*model.BankingDetails](s.now),
		activeset.WithRetryPolicy[*model.BankingDetails](s.policy))
	return s
}

// bankingLocker opens a transaction holding the banking collection lock.
type bankingLocker struct{ db store.DB }

func (l bankingLocker) WithActiveLock(ctx context.Context, fn func(c activeset.Collection[*model.BankingDetails]) error) error {
	return l.db.InTx(ctx, func(tx store.Tx) error {
		if err := tx.LockCollection(ctx, BankingCollection); err != nil {
			return err
		}
		return fn(tx.Banking())
	})
}

// GetActive returns the active record; ok is false when none is active.
func (s *BankingService) GetActive(ctx context.Context) (*model.BankingDetails, bool, error) {
	return s.active.GetActive(ctx)
}

func (s *BankingService) Get(ctx context.Context, id string) (*model.BankingDetails, error) {
	rec, err := read(ctx, &s.base, "banking.get", func(ctx context.Context) (*model.BankingDetails, error) {
		return s.db.Banking().Get(ctx, id)
	})
	if err != nil {
		return nil, notFound(err, "banking details %s not found", id)
	}
	return rec, nil
}

// List returns every record, most recently updated first.
func (s *BankingService) List(ctx context.Context) ([]*model.BankingDetails, error) {
	return read(ctx, &s.base, "banking.list", func(ctx context.Context) ([]*model.BankingDetails, error) {
		return s.db.Banking().List(ctx)
	})
}

// Create stores a new record under a fresh id.
func (s *BankingService) Create(ctx context.Context, rec *model.BankingDetails) (*model.BankingDetails, error) {
	if rec == nil {
		return nil, model.Validation("banking details are required")
	}
	c := *rec
	c.ID = ""
	return s.Save(ctx, &c)
}

// Update replaces the fields of an existing record.
func (s *BankingService) Update(ctx context.Context, id string, rec *model.BankingDetails) (*model.BankingDetails, error) {
	if rec == nil {
		return nil, model.Validation("banking details are required")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	c := *rec
	c.ID = id
	return s.Save(ctx, &c)
}

// Save validates rec and stores it through the single-active enforcer.
func (s *BankingService) Save(ctx context.Context, rec *model.BankingDetails) (*model.BankingDetails, error) {
	if rec == nil {
		return nil, model.Validation("banking details are required")
	}
	if err := validate.Struct(rec); err != nil {
		return nil, model.Validation("%s", err.Error())
	}
	saved, err := s.active.Save(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("record_id", saved.ID).Bool("active", saved.IsActive).Msg("banking details saved")
	return saved, nil
}

// Validate reports a Conflict when rec would replace a different active record.
func (s *BankingService) Validate(ctx context.Context, rec *model.BankingDetails) error {
	if rec == nil {
		return model.Validation("banking details are required")
	}
	if err := validate.Struct(rec); err != nil {
		return model.Validation("%s", err.Error())
	}
	return s.active.Validate(ctx, rec)
}
