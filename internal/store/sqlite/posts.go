package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/telecomnet/telecom-social/internal/model"
)

// --- Posts ---
type posts struct{ q queryer }

func (r *posts) Create(ctx context.Context, p *model.Post) (*model.Post, error) {
	_, err := r.q.ExecContext(ctx, `INSERT INTO posts (post_id, author_id, content, created_at, updated_at) VALUES (?,?,?,?,?)`,
		p.PostID, p.AuthorID, p.Content, toMicros(p.CreatedAt), toMicros(p.UpdatedAt))
	if err != nil {
		return nil, dbErr("create post", err)
	}
	out := *p
	out.CreatedAt = fromMicros(toMicros(p.CreatedAt))
	out.UpdatedAt = fromMicros(toMicros(p.UpdatedAt))
	return &out, nil
}

func (r *posts) List(ctx context.Context, authorIDs []string, limit int) ([]*model.Post, error) {
	query := `SELECT post_id, author_id, content, created_at, updated_at FROM posts`
	var args []any
	if authorIDs != nil {
		if len(authorIDs) == 0 {
			return nil, nil
		}
		in, inArgs := inClause(authorIDs)
		query += ` WHERE author_id IN (` + in + `)`
		args = inArgs
	}
	query += ` ORDER BY created_at DESC, post_id LIMIT ?`
	args = append(args, limit)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbErr("list posts", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Post
	for rows.Next() {
		var p model.Post
		var created, updated int64
		if err := rows.Scan(&p.PostID, &p.AuthorID, &p.Content, &created, &updated); err != nil {
			return nil, dbErr("scan post", err)
		}
		p.CreatedAt = fromMicros(created)
		p.UpdatedAt = fromMicros(updated)
		out = append(out, &p)
	}
	return out, dbErr("list posts", rows.Err())
}

// --- Notifications ---
type notifications struct{ q queryer }

const notificationColumns = `notification_id, recipient_id, type, actor_id, request_id, read_at, created_at`

func scanNotification(sc interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var read sql.NullInt64
	var created int64
	if err := sc.Scan(&n.NotificationID, &n.RecipientID, &n.Type, &n.ActorID, &n.RequestID, &read, &created); err != nil {
		return nil, err
	}
	n.ReadAt = fromNullMicros(read)
	n.CreatedAt = fromMicros(created)
	return &n, nil
}

func (r *notifications) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	_, err := r.q.ExecContext(ctx, `INSERT INTO notifications (`+notificationColumns+`) VALUES (?,?,?,?,?,?,?)`,
		n.NotificationID, n.RecipientID, string(n.Type), n.ActorID, n.RequestID, nullMicros(n.ReadAt), toMicros(n.CreatedAt))
	if err != nil {
		return nil, dbErr("create notification", err)
	}
	out := *n
	out.CreatedAt = fromMicros(toMicros(n.CreatedAt))
	return &out, nil
}

func (r *notifications) Get(ctx context.Context, notificationID string) (*model.Notification, error) {
	n, err := scanNotification(r.q.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE notification_id = ?`, notificationID))
	if err != nil {
		return nil, dbErr("get notification", err)
	}
	return n, nil
}

func (r *notifications) List(ctx context.Context, recipientID string, limit int) ([]*model.Notification, error) {
	rows, err := r.q.QueryContext(ctx, `
        SELECT `+notificationColumns+` FROM notifications
        WHERE recipient_id = ?
        ORDER BY created_at DESC, notification_id
        LIMIT ?
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
	_, err := r.q.ExecContext(ctx, `UPDATE notifications SET read_at = ? WHERE notification_id = ? AND read_at IS NULL`,
		toMicros(at), notificationID)
	return dbErr("mark notification read", err)
}
