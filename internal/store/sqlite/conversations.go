package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/telecomnet/telecom-social/internal/model"
)

// --- Conversations ---
type conversations struct{ q queryer }

func scanConversation(sc interface{ Scan(...any) error }) (*model.Conversation, error) {
	var c model.Conversation
	var key string
	var created, updated int64
	if err := sc.Scan(&c.ConversationID, &key, &created, &updated); err != nil {
		return nil, err
	}
	c.Participants = strings.Split(key, ",")
	c.CreatedAt = fromMicros(created)
	c.UpdatedAt = fromMicros(updated)
	return &c, nil
}

func (r *conversations) Create(ctx context.Context, c *model.Conversation) (*model.Conversation, error) {
	key := model.ParticipantKey(c.Participants)
	_, err := r.q.ExecContext(ctx, `
        INSERT INTO conversations (conversation_id, participant_key, created_at, updated_at)
        VALUES (?,?,?,?)
    `, c.ConversationID, key, toMicros(c.CreatedAt), toMicros(c.UpdatedAt))
	if err != nil {
		return nil, dbErr("create conversation", err)
	}
	for _, p := range c.Participants {
		if _, err := r.q.ExecContext(ctx, `INSERT INTO conversation_participants (conversation_id, user_id) VALUES (?,?)`,
			c.ConversationID, p); err != nil {
			return nil, dbErr("add participant", err)
		}
	}
	out := *c
	out.Participants = strings.Split(key, ",")
	out.CreatedAt = fromMicros(toMicros(c.CreatedAt))
	out.UpdatedAt = fromMicros(toMicros(c.UpdatedAt))
	return &out, nil
}

func (r *conversations) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	c, err := scanConversation(r.q.QueryRowContext(ctx, `
        SELECT conversation_id, participant_key, created_at, updated_at
        FROM conversations WHERE conversation_id = ?
    `, conversationID))
	if err != nil {
		return nil, dbErr("get conversation", err)
	}
	return c, nil
}

func (r *conversations) FindByParticipants(ctx context.Context, participantKey string) (*model.Conversation, error) {
	c, err := scanConversation(r.q.QueryRowContext(ctx, `
        SELECT conversation_id, participant_key, created_at, updated_at
        FROM conversations WHERE participant_key = ?
    `, participantKey))
	if err != nil {
		return nil, dbErr("find conversation", err)
	}
	return c, nil
}

func (r *conversations) ListFor(ctx context.Context, userID string) ([]*model.Conversation, error) {
	rows, err := r.q.QueryContext(ctx, `
        SELECT c.conversation_id, c.participant_key, c.created_at, c.updated_at
        FROM conversations c
        JOIN conversation_participants p ON p.conversation_id = c.conversation_id
        WHERE p.user_id = ?
        ORDER BY c.updated_at DESC, c.conversation_id
    `, userID)
	if err != nil {
		return nil, dbErr("list conversations", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, dbErr("scan conversation", err)
		}
		out = append(out, c)
	}
	return out, dbErr("list conversations", rows.Err())
}

func (r *conversations) Touch(ctx context.Context, conversationID string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE conversation_id = ?`, toMicros(at), conversationID)
	if err != nil {
		return dbErr("touch conversation", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return dbErr("touch conversation", sql.ErrNoRows)
	}
	return nil
}

// --- Messages ---
type messages struct{ q queryer }

const messageColumns = `message_id, conversation_id, sender_id, body, sent_at, read_at`

func scanMessage(sc interface{ Scan(...any) error }) (*model.Message, error) {
	var m model.Message
	var sent int64
	var read sql.NullInt64
	if err := sc.Scan(&m.MessageID, &m.ConversationID, &m.SenderID, &m.Body, &sent, &read); err != nil {
		return nil, err
	}
	m.SentAt = fromMicros(sent)
	m.ReadAt = fromNullMicros(read)
	return &m, nil
}

func (r *messages) Create(ctx context.Context, m *model.Message) (*model.Message, error) {
	_, err := r.q.ExecContext(ctx, `INSERT INTO messages (`+messageColumns+`) VALUES (?,?,?,?,?,?)`,
		m.MessageID, m.ConversationID, m.SenderID, m.Body, toMicros(m.SentAt), nullMicros(m.ReadAt))
	if err != nil {
		return nil, dbErr("create message", err)
	}
	out := *m
	out.SentAt = fromMicros(toMicros(m.SentAt))
	return &out, nil
}

func (r *messages) Get(ctx context.Context, messageID string) (*model.Message, error) {
	m, err := scanMessage(r.q.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE message_id = ?`, messageID))
	if err != nil {
		return nil, dbErr("get message", err)
	}
	return m, nil
}

func (r *messages) LastSentAt(ctx context.Context, conversationID string) (time.Time, bool, error) {
	var last sql.NullInt64
	err := r.q.QueryRowContext(ctx, `SELECT MAX(sent_at) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&last)
	if err != nil {
		return time.Time{}, false, dbErr("last message", err)
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	return fromMicros(last.Int64), true, nil
}

func (r *messages) List(ctx context.Context, conversationID string, page model.MessagePage) ([]*model.Message, error) {
	after := int64(-1 << 62)
	if page.After != nil {
		after = toMicros(*page.After)
	}
	rows, err := r.q.QueryContext(ctx, `
        SELECT `+messageColumns+` FROM messages
        WHERE conversation_id = ? AND sent_at > ?
        ORDER BY sent_at ASC, message_id ASC
        LIMIT ?
    `, conversationID, after, page.Limit)
	if err != nil {
		return nil, dbErr("list messages", err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, dbErr("scan message", err)
		}
		out = append(out, m)
	}
	return out, dbErr("list messages", rows.Err())
}

func (r *messages) MarkRead(ctx context.Context, messageID string, at time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE messages SET read_at = ? WHERE message_id = ? AND read_at IS NULL`, toMicros(at), messageID)
	if err != nil {
		return false, dbErr("mark read", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbErr("mark read", err)
	}
	return n == 1, nil
}
