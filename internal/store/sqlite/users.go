package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/telecomnet/telecom-social/internal/model"
)

// --- Users ---
type users struct{ q queryer }

const userColumns = `user_id, username, email, first_name, last_name, created_at`

func scanUser(sc interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var created int64
	if err := sc.Scan(&u.UserID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = fromMicros(created)
	return &u, nil
}

func (r *users) Create(ctx context.Context, u *model.User) (*model.User, error) {
	_, err := r.q.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?,?,?,?,?,?)`,
		u.UserID, u.Username, u.Email, u.FirstName, u.LastName, toMicros(u.CreatedAt))
	if err != nil {
		return nil, dbErr("create user", err)
	}
	out := *u
	out.CreatedAt = fromMicros(toMicros(u.CreatedAt))
	return &out, nil
}

func (r *users) Get(ctx context.Context, userID string) (*model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID))
	if err != nil {
		return nil, dbErr("get user", err)
	}
	return u, nil
}

func (r *users) GetMany(ctx context.Context, userIDs []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	in, args := inClause(userIDs)
	rows, err := r.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id IN (`+in+`)`, args...)
	if err != nil {
		return nil, dbErr("get users", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, dbErr("scan user", err)
		}
		out[u.UserID] = u
	}
	return out, dbErr("get users", rows.Err())
}

func (r *users) List(ctx context.Context, excludeUserID string, limit int) ([]*model.User, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id <> ? ORDER BY username LIMIT ?`, excludeUserID, limit)
	if err != nil {
		return nil, dbErr("list users", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, dbErr("scan user", err)
		}
		out = append(out, u)
	}
	return out, dbErr("list users", rows.Err())
}

// --- Profiles ---
type profiles struct{ q queryer }

func (r *profiles) Create(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	_, err := r.q.ExecContext(ctx, `INSERT INTO profiles (user_id, bio, updated_at) VALUES (?,?,?)`,
		p.UserID, p.Bio, toMicros(p.UpdatedAt))
	if err != nil {
		return nil, dbErr("create profile", err)
	}
	out := *p
	out.UpdatedAt = fromMicros(toMicros(p.UpdatedAt))
	return &out, nil
}

func (r *profiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return scanProfile(r.q.QueryRowContext(ctx, `SELECT user_id, bio, updated_at FROM profiles WHERE user_id = ?`, userID), "get profile")
}

func (r *profiles) UpdateBio(ctx context.Context, userID, bio string, at time.Time) (*model.Profile, error) {
	return scanProfile(r.q.QueryRowContext(ctx, `
        UPDATE profiles SET bio = ?, updated_at = ? WHERE user_id = ?
        RETURNING user_id, bio, updated_at
    `, bio, toMicros(at), userID), "update profile")
}

func scanProfile(row *sql.Row, op string) (*model.Profile, error) {
	var p model.Profile
	var updated int64
	if err := row.Scan(&p.UserID, &p.Bio, &updated); err != nil {
		return nil, dbErr(op, err)
	}
	p.UpdatedAt = fromMicros(updated)
	return &p, nil
}
