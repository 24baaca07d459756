package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/telecomnet/telecom-social/internal/model"
)

// --- Posts ---
type posts struct{ q queryer }

func scanPost(sc interface{ Scan(...any) error }) (*model.Post, error) {
	var p model.Post
	if err := sc.Scan(&p.PostID, &p.AuthorID, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = utc(p.CreatedAt)
	p.UpdatedAt = utc(p.UpdatedAt)
	return &p, nil
}

func (r *posts) Create(ctx context.Context, p *model.Post) (*model.Post, error) {
	out, err := scanPost(r.q.QueryRowContext(ctx, `
        INSERT INTO posts (post_id, author_id, content, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING post_id, author_id, content, created_at, updated_at
    `, p.PostID, p.AuthorID, p.Content, micros(p.CreatedAt), micros(p.UpdatedAt)))
	if err != nil {
		return nil, dbErr("create post", err)
	}
	return out, nil
}

func (r *posts) List(ctx context.Context, authorIDs []string, limit int) ([]*model.Post, error) {
	if authorIDs != nil && len(authorIDs) == 0 {
		return nil, nil
	}
	var filter any
	if authorIDs != nil {
		filter = authorIDs
	}
	rows, err := r.q.QueryContext(ctx, `
        SELECT post_id, author_id, content, created_at, updated_at FROM posts
        WHERE $1::text[] IS NULL OR author_id = ANY($1::text[])
        ORDER BY created_at DESC, post_id
        LIMIT $2
    `, filter, limit)
	if err != nil {
		return nil, dbErr("list posts", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, dbErr("scan post", err)
		}
		out = append(out, p)
	}
	return out, dbErr("list posts", rows.Err())
}

// --- Notifications ---
type notifications struct{ q queryer }

const notificationColumns = `notification_id, recipient_id, type, actor_id, request_id, read_at, created_at`

func scanNotification(sc interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var read sql.NullTime
	if err := sc.Scan(&n.NotificationID, &n.RecipientID, &n.Type, &n.ActorID, &n.RequestID, &read, &n.CreatedAt); err != nil {
		return nil, err
	}
	if read.Valid {
		n.ReadAt = utcPtr(&read.Time)
	}
	n.CreatedAt = utc(n.CreatedAt)
	return &n, nil
}

func (r *notifications) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	out, err := scanNotification(r.q.QueryRowContext(ctx, `
        INSERT INTO notifications (`+notificationColumns+`)
        VALUES ($1,$2,$3,$4,$5,NULL,$6)
        RETURNING `+notificationColumns,
		n.NotificationID, n.RecipientID, string(n.Type), n.ActorID, n.RequestID, micros(n.CreatedAt)))
	if err != nil {
		return nil, dbErr("create notification", err)
	}
	return out, nil
}

func (r *notifications) Get(ctx context.Context, notificationID string) (*model.Notification, error) {
	n, err := scanNotification(r.q.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE notification_id = $1`, notificationID))
	if err != nil {
		return nil, dbErr("get notification", err)
	}
	return n, nil
}

func (r *notifications) List(ctx context.Context, recipientID string, limit int) ([]*model.Notification, error) {
	rows, err := r.q.QueryContext(ctx, `
        SELECT `+notificationColumns+` FROM notifications
        WHERE recipient_id = $1
        ORDER BY created_at DESC, notification_id
        LIMIT $2
    `, recipientID, limit)
	if err != nil {
		return nil, dbErr("list notifications", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, dbErr("scan notification", err)
		}
		out = append(out, n)
	}
	return out, dbErr("list notifications", rows.Err())
}

func (r *notifications) MarkRead(ctx context.Context, notificationID string, at time.Time) error {
	_, err := r.q.ExecContext(ctx, `UPDATE notifications SET read_at = $2 WHERE notification_id = $1 AND read_at IS NULL`,
		notificationID, micros(at))
	return dbErr("mark notification read", err)
}
