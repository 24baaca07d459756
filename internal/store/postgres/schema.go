package postgres

import (
	"context"
	"database/sql"
)

// EnsureSchema creates tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id    TEXT PRIMARY KEY,
            username   TEXT NOT NULL UNIQUE,
            email      TEXT NOT NULL UNIQUE,
            first_name TEXT NOT NULL DEFAULT '',
            last_name  TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS profiles (
            user_id    TEXT PRIMARY KEY REFERENCES users(user_id),
            bio        TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS connection_requests (
            request_id   TEXT PRIMARY KEY,
            requester_id TEXT NOT NULL REFERENCES users(user_id),
            recipient_id TEXT NOT NULL REFERENCES users(user_id),
            state        TEXT NOT NULL CHECK (state IN ('pending','accepted','declined','cancelled')),
            created_at   TIMESTAMPTZ NOT NULL,
            updated_at   TIMESTAMPTZ NOT NULL,
            UNIQUE (requester_id, recipient_id),
            CHECK (requester_id <> recipient_id)
        )`,
		`CREATE INDEX IF NOT EXISTS connection_requests_recipient_idx ON connection_requests(recipient_id, state)`,
		`CREATE INDEX IF NOT EXISTS connection_requests_requester_idx ON connection_requests(requester_id, state)`,
		`CREATE TABLE IF NOT EXISTS conversations (
            conversation_id TEXT PRIMARY KEY,
            participant_key TEXT NOT NULL UNIQUE,
            created_at      TIMESTAMPTZ NOT NULL,
            updated_at      TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS conversation_participants (
            conversation_id TEXT NOT NULL REFERENCES conversations(conversation_id),
            user_id         TEXT NOT NULL REFERENCES users(user_id),
            PRIMARY KEY (conversation_id, user_id)
        )`,
		`CREATE INDEX IF NOT EXISTS conversation_participants_user_idx ON conversation_participants(user_id)`,
		`CREATE TABLE IF NOT EXISTS messages (
            message_id      TEXT PRIMARY KEY,
            conversation_id TEXT NOT NULL REFERENCES conversations(conversation_id),
            sender_id       TEXT NOT NULL REFERENCES users(user_id),
            body            TEXT NOT NULL,
            sent_at         TIMESTAMPTZ NOT NULL,
            read_at         TIMESTAMPTZ,
            UNIQUE (conversation_id, sent_at)
        )`,
		`CREATE TABLE IF NOT EXISTS banking_details (
            id             TEXT PRIMARY KEY,
            bank_name      TEXT NOT NULL,
            account_name   TEXT NOT NULL,
            account_number TEXT NOT NULL,
            branch_code    TEXT NOT NULL DEFAULT '',
            swift_code     TEXT NOT NULL DEFAULT '',
            instructions   TEXT NOT NULL DEFAULT '',
            is_active      BOOLEAN NOT NULL DEFAULT FALSE,
            created_at     TIMESTAMPTZ NOT NULL,
            updated_at     TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS posts (
            post_id    TEXT PRIMARY KEY,
            author_id  TEXT NOT NULL REFERENCES users(user_id),
            content    TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS posts_created_idx ON posts(created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS notifications (
            notification_id TEXT PRIMARY KEY,
            recipient_id    TEXT NOT NULL REFERENCES users(user_id),
            type            TEXT NOT NULL,
            actor_id        TEXT NOT NULL,
            request_id      TEXT NOT NULL,
            read_at         TIMESTAMPTZ,
            created_at      TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS notifications_recipient_idx ON notifications(recipient_id, created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
