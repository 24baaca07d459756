package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/telecomnet/telecom-social/internal/metrics"
	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/store"
)

// ConnectionService owns the connection request lifecycle. Every mutation
// holds the unordered-pair lock, so at most one pending or accepted record
// exists per pair.
type ConnectionService struct {
	base
}

func NewConnectionService(db store.DB, log zerolog.Logger, opts ...Option) *ConnectionService {
	return &ConnectionService{base: newBase(db, log, "connections", opts)}
}

// SendRequest creates a pending request from requester to recipient, or
// revives a declined or cancelled one in the same direction. created is false
// when an existing record was reused.
func (s *ConnectionService) SendRequest(ctx context.Context, requesterID, recipientID string) (req *model.ConnectionRequest, created bool, err error) {
	if err := requireID("requesterId", requesterID); err != nil {
		return nil, false, err
	}
	if err := requireID("recipientId", recipientID); err != nil {
		return nil, false, err
	}
	if requesterID == recipientID {
		return nil, false, model.InvalidOperation("cannot send a connection request to yourself")
	}

	err = s.inTx(ctx, "connections.send", func(tx store.Tx) error {
		created = false
		if err := tx.LockPair(ctx, requesterID, recipientID); err != nil {
			return err
		}
		if _, err := requireUsers(ctx, tx, requesterID, recipientID); err != nil {
			return err
		}

		forward, err := findDirected(ctx, tx, requesterID, recipientID)
		if err != nil {
			return err
		}
		if forward != nil {
			switch forward.State {
			case model.StatePending:
				return model.Conflict("connection request already pending")
			case model.StateAccepted:
				return model.Conflict("already connected")
			}
		}
		reverse, err := findDirected(ctx, tx, recipientID, requesterID)
		if err != nil {
			return err
		}
		if reverse != nil {
			switch reverse.State {
			case model.StatePending:
				return model.Conflict("recipient already sent you a connection request")
			case model.StateAccepted:
				return model.Conflict("already connected")
			}
		}

		now := s.clock()
		if forward != nil {
			req, err = tx.Requests().UpdateState(ctx, forward.RequestID, model.StatePending, now)
		} else {
			req, err = tx.Requests().Create(ctx, &model.ConnectionRequest{
				RequestID:   uuid.New().String(),
				RequesterID: requesterID,
				RecipientID: recipientID,
				State:       model.StatePending,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			created = true
		}
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return model.Conflict("connection request already exists")
			}
			return err
		}
		return notify(ctx, tx, recipientID, model.NotificationConnectionRequest, requesterID, req.RequestID, now)
	})
	if err != nil {
		return nil, false, err
	}

	action := "resend"
	if created {
		action = "send"
	}
	metrics.ConnectionTransitions.WithLabelValues(action).Inc()
	s.log.Debug().Str("request_id", req.RequestID).Str("action", action).Msg("connection request sent")
	return req, created, nil
}

// RespondToRequest moves a pending request to accepted, declined or
// cancelled. Only the recipient accepts or declines; only the requester
// cancels. Anyone else is Forbidden whatever the record's state.
func (s *ConnectionService) RespondToRequest(ctx context.Context, requestID, actorID string, action model.RespondAction) (*model.ConnectionRequest, error) {
	target, ok := action.Target()
	if !ok {
		return nil, model.InvalidOperation("unknown action %q", action)
	}
	if err := requireID("requestId", requestID); err != nil {
		return nil, err
	}

	var out *model.ConnectionRequest
	err := s.inTx(ctx, "connections.respond", func(tx store.Tx) error {
		req, err := tx.Requests().Get(ctx, requestID)
		if err != nil {
			return notFound(err, "connection request %s not found", requestID)
		}
		if !req.Involves(actorID) {
			return model.Forbidden("not a party to this connection request")
		}
		if err := tx.LockPair(ctx, req.RequesterID, req.RecipientID); err != nil {
			return err
		}
		// Re-read under the lock; the state may have moved while we waited.
		if req, err = tx.Requests().Get(ctx, requestID); err != nil {
			return notFound(err, "connection request %s not found", requestID)
		}
		if req.State != model.StatePending {
			return model.InvalidOperation("connection request is %s, not pending", req.State)
		}
		switch action {
		case model.ActionAccept, model.ActionDecline:
			if actorID != req.RecipientID {
				return model.Forbidden("only the recipient can %s a connection request", action)
			}
		case model.ActionCancel:
			if actorID != req.RequesterID {
				return model.Forbidden("only the requester can cancel a connection request")
			}
		}

		now := s.clock()
		if out, err = tx.Requests().UpdateState(ctx, requestID, target, now); err != nil {
			return notFound(err, "connection request %s not found", requestID)
		}
		if action == model.ActionAccept {
			return notify(ctx, tx, req.RequesterID, model.NotificationConnectionAccepted, actorID, requestID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ConnectionTransitions.WithLabelValues(string(action)).Inc()
	return out, nil
}

// ListIncomingPending returns pending requests addressed to userID, newest first.
func (s *ConnectionService) ListIncomingPending(ctx context.Context, userID string) ([]*model.ConnectionRequest, error) {
	return read(ctx, &s.base, "connections.incoming", func(ctx context.Context) ([]*model.ConnectionRequest, error) {
		return s.db.Requests().ListIncomingPending(ctx, userID)
	})
}

// ListOutgoingPending returns pending requests sent by userID, newest first.
func (s *ConnectionService) ListOutgoingPending(ctx context.Context, userID string) ([]*model.ConnectionRequest, error) {
	return read(ctx, &s.base, "connections.outgoing", func(ctx context.Context) ([]*model.ConnectionRequest, error) {
		return s.db.Requests().ListOutgoingPending(ctx, userID)
	})
}

// ListAccepted resolves every accepted request involving userID to the other
// party, most recently established first.
func (s *ConnectionService) ListAccepted(ctx context.Context, userID string) ([]model.Connection, error) {
	return read(ctx, &s.base, "connections.accepted", func(ctx context.Context) ([]model.Connection, error) {
		reqs, err := s.db.Requests().ListAccepted(ctx, userID)
		if err != nil {
			return nil, err
		}
		peerIDs := lo.Uniq(lo.Map(reqs, func(r *model.ConnectionRequest, _ int) string { return r.Peer(userID) }))
		peers, err := s.db.Users().GetMany(ctx, peerIDs)
		if err != nil {
			return nil, err
		}
		out := make([]model.Connection, 0, len(reqs))
		for _, r := range reqs {
			peerID := r.Peer(userID)
			summary := model.UserSummary{UserID: peerID}
			if u, ok := peers[peerID]; ok {
				summary = u.Summary()
			}
			out = append(out, model.Connection{RequestID: r.RequestID, Peer: summary, EstablishedAt: r.UpdatedAt})
		}
		return out, nil
	})
}

// ConnectedIDs returns the ids of everyone userID is connected to.
func (s *ConnectionService) ConnectedIDs(ctx context.Context, userID string) ([]string, error) {
	return read(ctx, &s.base, "connections.connected_ids", func(ctx context.Context) ([]string, error) {
		reqs, err := s.db.Requests().ListAccepted(ctx, userID)
		if err != nil {
			return nil, err
		}
		return lo.Uniq(lo.Map(reqs, func(r *model.ConnectionRequest, _ int) string { return r.Peer(userID) })), nil
	})
}

// Status describes how viewer relates to other.
func (s *ConnectionService) Status(ctx context.Context, viewerID, otherID string) (model.PairStatus, error) {
	if viewerID == otherID {
		return model.PairStatus{Status: model.StatusNone}, nil
	}
	reqs, err := s.ListBetween(ctx, viewerID, otherID)
	if err != nil {
		return model.PairStatus{}, err
	}
	live, ok := lo.Find(reqs, func(r *model.ConnectionRequest) bool { return r.State.Live() })
	if !ok {
		return model.PairStatus{Status: model.StatusNone}, nil
	}
	switch {
	case live.State == model.StateAccepted:
		return model.PairStatus{Status: model.StatusConnected, RequestID: live.RequestID}, nil
	case live.RequesterID == viewerID:
		return model.PairStatus{Status: model.StatusPendingOutgoing, RequestID: live.RequestID}, nil
	default:
		return model.PairStatus{Status: model.StatusPendingIncoming, RequestID: live.RequestID}, nil
	}
}

// ListBetween returns every request record of the unordered pair {a, b}.
func (s *ConnectionService) ListBetween(ctx context.Context, a, b string) ([]*model.ConnectionRequest, error) {
	return read(ctx, &s.base, "connections.between", func(ctx context.Context) ([]*model.ConnectionRequest, error) {
		return s.db.Requests().ListBetween(ctx, a, b)
	})
}

func findDirected(ctx context.Context, tx store.Tx, requesterID, recipientID string) (*model.ConnectionRequest, error) {
	r, err := tx.Requests().FindDirected(ctx, requesterID, recipientID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return r, err
}
