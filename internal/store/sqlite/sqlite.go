// Package sqlite is the embedded store used by the local build target.
//
// Transactions start with BEGIN IMMEDIATE, so writers are serialized by the
// database itself and the Tx lock methods only need to validate their target.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/telecomnet/telecom-social/internal/store"
)

const busyTimeoutMillis = 5000

// Open opens (or creates) the database file at path and verifies connectivity.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)",
		path, busyTimeoutMillis)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens the file at path, applies the schema and returns the store.
func New(ctx context.Context, path string) (store.DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an already migrated connection.
func NewWithDB(db *sql.DB) store.DB {
	return &sqliteStore{repos: repos{q: db}, db: db}
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

type sqliteStore struct {
	repos
	db *sql.DB
}

func (s *sqliteStore) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&sqliteTx{repos: repos{q: tx}}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return dbErr("commit", err)
	}
	return nil
}

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error { return s.db.Close() }

type sqliteTx struct{ repos }

// LockPair is satisfied by the immediate transaction.
func (t *sqliteTx) LockPair(ctx context.Context, a, b string) error {
	return ctx.Err()
}

// LockConversation checks the conversation exists; the immediate
// transaction already excludes other writers.
func (t *sqliteTx) LockConversation(ctx context.Context, conversationID string) error {
	var id string
	err := t.q.QueryRowContext(ctx, `SELECT conversation_id FROM conversations WHERE conversation_id = ?`, conversationID).Scan(&id)
	return dbErr("lock conversation", err)
}

func (t *sqliteTx) LockCollection(ctx context.Context, name string) error {
	return ctx.Err()
}

// dbErr maps driver errors onto store sentinels.
func dbErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		switch {
		case code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%s: %w: %w", op, store.ErrTransient, err)
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w: %w", op, store.ErrDuplicate, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toMicros(t time.Time) int64 { return t.UTC().UnixMicro() }

func fromMicros(v int64) time.Time { return time.UnixMicro(v).UTC() }

func nullMicros(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMicros(*t), Valid: true}
}

func fromNullMicros(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMicros(v.Int64)
	return &t
}

// inClause returns "?,?,?" and the ids as driver args.
func inClause(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}
