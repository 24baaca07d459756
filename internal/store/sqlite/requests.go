package sqlite

import (
	"context"
	"time"

	"github.com/telecomnet/telecom-social/internal/model"
)

type requests struct{ q queryer }

const requestColumns = `request_id, requester_id, recipient_id, state, created_at, updated_at`

func scanRequest(sc interface{ Scan(...any) error }) (*model.ConnectionRequest, error) {
	var r model.ConnectionRequest
	var created, updated int64
	if err := sc.Scan(&r.RequestID, &r.RequesterID, &r.RecipientID, &r.State, &created, &updated); err != nil {
		return nil, err
	}
	r.CreatedAt = fromMicros(created)
	r.UpdatedAt = fromMicros(updated)
	return &r, nil
}

func (s *requests) Create(ctx context.Context, r *model.ConnectionRequest) (*model.ConnectionRequest, error) {
	_, err := s.q.ExecContext(ctx, `INSERT INTO connection_requests (`+requestColumns+`) VALUES (?,?,?,?,?,?)`,
		r.RequestID, r.RequesterID, r.RecipientID, string(r.State), toMicros(r.CreatedAt), toMicros(r.UpdatedAt))
	if err != nil {
		return nil, dbErr("create request", err)
	}
	out := *r
	out.CreatedAt = fromMicros(toMicros(r.CreatedAt))
	out.UpdatedAt = fromMicros(toMicros(r.UpdatedAt))
	return &out, nil
}

func (s *requests) Get(ctx context.Context, requestID string) (*model.ConnectionRequest, error) {
	r, err := scanRequest(s.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM connection_requests WHERE request_id = ?`, requestID))
	if err != nil {
		return nil, dbErr("get request", err)
	}
	return r, nil
}

func (s *requests) FindDirected(ctx context.Context, requesterID, recipientID string) (*model.ConnectionRequest, error) {
	r, err := scanRequest(s.q.QueryRowContext(ctx, `
        SELECT `+requestColumns+` FROM connection_requests
        WHERE requester_id = ? AND recipient_id = ?
    `, requesterID, recipientID))
	if err != nil {
		return nil, dbErr("find request", err)
	}
	return r, nil
}

func (s *requests) UpdateState(ctx context.Context, requestID string, state model.RequestState, at time.Time) (*model.ConnectionRequest, error) {
	r, err := scanRequest(s.q.QueryRowContext(ctx, `
        UPDATE connection_requests SET state = ?, updated_at = ? WHERE request_id = ?
        RETURNING `+requestColumns, string(state), toMicros(at), requestID))
	if err != nil {
		return nil, dbErr("update request", err)
	}
	return r, nil
}

func (s *requests) ListIncomingPending(ctx context.Context, recipientID string) ([]*model.ConnectionRequest, error) {
	return s.list(ctx, "list incoming", `
        SELECT `+requestColumns+` FROM connection_requests
        WHERE recipient_id = ? AND state = 'pending'
        ORDER BY updated_at DESC, request_id
    `, recipientID)
}

func (s *requests) ListOutgoingPending(ctx context.Context, requesterID string) ([]*model.ConnectionRequest, error) {
	return s.list(ctx, "list outgoing", `
        SELECT `+requestColumns+` FROM connection_requests
        WHERE requester_id = ? AND state = 'pending'
        ORDER BY updated_at DESC, request_id
    `, requesterID)
}

func (s *requests) ListAccepted(ctx context.Context, userID string) ([]*model.ConnectionRequest, error) {
	return s.list(ctx, "list accepted", `
        SELECT `+requestColumns+` FROM connection_requests
        WHERE (requester_id = ? OR recipient_id = ?) AND state = 'accepted'
        ORDER BY updated_at DESC, request_id
    `, userID, userID)
}

func (s *requests) ListBetween(ctx context.Context, a, b string) ([]*model.ConnectionRequest, error) {
	return s.list(ctx, "list pair", `
        SELECT `+requestColumns+` FROM connection_requests
        WHERE (requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)
        ORDER BY created_at, request_id
    `, a, b, b, a)
}

func (s *requests) list(ctx context.Context, op, query string, args ...any) ([]*model.ConnectionRequest, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbErr(op, err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.ConnectionRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, dbErr(op, err)
		}
		out = append(out, r)
	}
	return out, dbErr(op, rows.Err())
}
