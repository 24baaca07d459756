package postgres

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
	if err := sc.Scan(&u.UserID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = utc(u.CreatedAt)
	return &u, nil
}

func (r *users) Create(ctx context.Context, u *model.User) (*model.User, error) {
	out, err := scanUser(r.q.QueryRowContext(ctx, `
        INSERT INTO users (`+userColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING `+userColumns,
		u.UserID, u.Username, u.Email, u.FirstName, u.LastName, micros(u.CreatedAt)))
	if err != nil {
		return nil, dbErr("create user", err)
	}
	return out, nil
}

func (r *users) Get(ctx context.Context, userID string) (*model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID))
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
	rows, err := r.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ANY($1)`, userIDs)
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
	rows, err := r.q.QueryContext(ctx, `
        SELECT `+userColumns+` FROM users
        WHERE user_id <> $1
        ORDER BY username
        LIMIT $2
    `, excludeUserID, limit)
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
	return scanProfile(r.q.QueryRowContext(ctx, `
        INSERT INTO profiles (user_id, bio, updated_at) VALUES ($1,$2,$3)
        RETURNING user_id, bio, updated_at
    `, p.UserID, p.Bio, micros(p.UpdatedAt)), "create profile")
}

func (r *profiles) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return scanProfile(r.q.QueryRowContext(ctx, `SELECT user_id, bio, updated_at FROM profiles WHERE user_id = $1`, userID), "get profile")
}

func (r *profiles) UpdateBio(ctx context.Context, userID, bio string, at time.Time) (*model.Profile, error) {
	return scanProfile(r.q.QueryRowContext(ctx, `
        UPDATE profiles SET bio = $2, updated_at = $3 WHERE user_id = $1
        RETURNING user_id, bio, updated_at
    `, userID, bio, micros(at)), "update profile")
}

func scanProfile(row *sql.Row, op string) (*model.Profile, error) {
	var p model.Profile
	if err := row.Scan(&p.UserID, &p.Bio, &p.UpdatedAt); err != nil {
		return nil, dbErr(op, err)
	}
	p.UpdatedAt = utc(p.UpdatedAt)
	return &p, nil
}
