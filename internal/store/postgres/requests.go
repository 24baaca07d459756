package postgres

import (
	"context"
	"time"

	"github.com/telecomnet/telecom-social/internal/model"
)

type requests struct{ q queryer }

const requestColumns = `request_id, requester_id, recipient_id, state, created_at, updated_at`

func scanRequest(sc interface{ Scan(...any) error }) (*model.ConnectionRequest, error) {
	var r model.ConnectionRequest
	if err := sc.Scan(&r.RequestID, &r.RequesterID, &r.RecipientID, &r.State, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.CreatedAt = utc(r.CreatedAt)
	r.UpdatedAt = utc(r.UpdatedAt)
	return &r, nil
}

func (s *requests) Create(ctx context.Context, r *model.ConnectionRequest) (*model.ConnectionRequest, error) {
	out, err := scanRequest(s.q.QueryRowContext(ctx, `
        INSERT INTO connection_requests (`+requestColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING `+requestColumns,
		r.RequestID, r.RequesterID, r.RecipientID, string(r.State), micros(r.CreatedAt), micros(r.UpdatedAt)))
	if err != nil {
		return nil, dbErr("create request", err)
	}
	return out, nil
}

func (s *requests) Get(ctx context.Context, requestID string) (*model.ConnectionRequest, error) {
	r, err := scanRequest(s.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM connection_requests WHERE request_id = $1`, requestID))
	if err != nil {
		return nil, dbErr("get request", err)
	}
	return r, nil
}

func (s *requests) FindDirected(ctx context.Context, requesterID, recipientID string) (*model.ConnectionRequest, error) {
	r, err := scanRequest(s.q.QueryRowContext(ctx, `
        SELECT `+requestColumns+` FROM connection_requests
        WHERE requester_id = $1 AND recipient_id = $2
    `, requesterID, recipientID))
	if err != nil {
		return nil, dbErr("find request", err)
	}
	return r, nil
}

func (s *requests) UpdateState(ctx context.Context, requestID string, state model.RequestState, at time.Time) (*model.ConnectionRequest, error) {
	r, err := scanRequest(s.q.QueryRowContext(ctx, `
        UPDATE connection_requests SET state = $2, updated_at = $3 WHERE request_id = $1
        RETURNING `+requestColumns, requestID, string(state), micros(at)))
	if err != nil {
		return nil, dbErr("update request", err)
	}
	return r, nil
}

func (s *requests) ListIncomingPending(ctx context.Context, recipientID string) ([]*model.ConnectionRequest, error) {
	return s.list(ctx, "list incoming", `
        SELECT `+requestColumns+` FROM connection_requests
        WHERE recipient_id = $1 AND state = 'pending'
        ORDER BY updated_at DESC, request_id
    `, recipientID)
}

func (s *requests) ListOutgoingPending(ctx context.Context, requesterID string) ([]*model.ConnectionRequest, error) {
	return s.list(ctx, "list outgoing", `
        SELECT `+requestColumns+` FROM connection_requests
        WHERE requester_id = $1 AND state = 'pending'
        ORDER BY updated_at DESC, request_id
    `, requesterID)
}

func (s *requests) ListAccepted(ctx context.Context, userID string) ([]*model.ConnectionRequest, error) {
	return s.list(ctx, "list accepted", `
        SELECT `+requestColumns+` FROM connection_requests
        WHERE (requester_id = $1 OR recipient_id = $1) AND state = 'accepted'
        ORDER BY updated_at DESC, request_id
    `, userID)
}

func (s *requests) ListBetween(ctx context.Context, a, b string) ([]*model.ConnectionRequest, error) {
	return s.list(ctx, "list pair", `
        SELECT `+requestColumns+` FROM connection_requests
        WHERE (requester_id = $1 AND recipient_id = $2) OR (requester_id = $2 AND recipient_id = $1)
        ORDER BY created_at, request_id
    `, a, b)
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
