package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/telecomnet/telecom-social/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.DB { return &pgStore{repos: repos{q: db}, db: db} }

// Bootstrap opens the database, applies the schema and returns the store.
func Bootstrap(ctx context.Context, dsn string) (store.DB, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repos struct{ q queryer }

func (r repos) Users() store.Users                 { return &users{q: r.q} }
func (r repos) Profiles() store.Profiles           { return &profiles{q: r.q} }
func (r repos) Requests() store.Requests           { return &requests{q: r.q} }
func (r repos) Conversations() store.Conversations { return &conversations{q: r.q} }
func (r repos) Messages() store.Messages           { return &messages{q: r.q} }
func (r repos) Banking() store.Banking             { return &banking{q: r.q} }
func (r repos) Posts() store.Posts                 { return &posts{q: r.q} }
func (r repos) Notifications() store.Notifications { return &notifications{q: r.q} }

type pgStore struct {
	repos
	db *sql.DB
}

// InTx runs fn in a READ COMMITTED transaction. Locks taken through the Tx
// are released on commit or rollback.
func (s *pgStore) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return dbErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&pgTx{repos: repos{q: tx}}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return dbErr("commit", err)
	}
	return nil
}

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *pgStore) Close() error { return s.db.Close() }

type pgTx struct{ repos }

func (t *pgTx) LockPair(ctx context.Context, a, b string) error {
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	return t.advisoryLock(ctx, "pair:"+lo+":"+hi)
}

func (t *pgTx) LockConversation(ctx context.Context, conversationID string) error {
	var id string
	err := t.q.QueryRowContext(ctx, `SELECT conversation_id FROM conversations WHERE conversation_id = $1 FOR UPDATE`, conversationID).Scan(&id)
	return dbErr("lock conversation", err)
}

func (t *pgTx) LockCollection(ctx context.Context, name string) error {
	return t.advisoryLock(ctx, "active:"+name)
}

func (t *pgTx) advisoryLock(ctx context.Context, key string) error {
	_, err := t.q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	return dbErr("advisory lock", err)
}

// SQLSTATE codes the store reacts to.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// dbErr maps driver errors onto store sentinels.
func dbErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, store.ErrDuplicate, err)
		case pgErr.Code == codeSerializationFailure,
			pgErr.Code == codeDeadlockDetected,
			pgErr.Code == codeLockNotAvailable,
			len(pgErr.Code) == 5 && pgErr.Code[:2] == "08":
			return fmt.Errorf("%s: %w: %w", op, store.ErrTransient, err)
		}
	}
	if pgconn.SafeToRetry(err) {
		return fmt.Errorf("%s: %w: %w", op, store.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func utc(t time.Time) time.Time { return t.UTC() }

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// micros truncates to the storage resolution of timestamptz.
func micros(t time.Time) time.Time { return t.UTC().Truncate(time.Microsecond) }
