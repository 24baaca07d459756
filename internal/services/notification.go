package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/store"
)

// NotificationService reads and acknowledges notifications. They are
// written by the transitions that cause them, inside the same transaction.
type NotificationService struct {
	base
}

func NewNotificationService(db store.DB, log zerolog.Logger, opts ...Option) *NotificationService {
	return &NotificationService{base: newBase(db, log, "notifications", opts)}
}

func (s *NotificationService) List(ctx context.Context, recipientID string, limit int) ([]*model.Notification, error) {
	return read(ctx, &s.base, "notifications.list", func(ctx context.Context) ([]*model.Notification, error) {
		return s.db.Notifications().List(ctx, recipientID, clampLimit(limit))
	})
}

// MarkRead acknowledges a notification. Marking twice keeps the first time.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) (*model.Notification, error) {
	var out *model.Notification
	err := s.inTx(ctx, "notifications.mark_read", func(tx store.Tx) error {
		n, err := tx.Notifications().Get(ctx, notificationID)
		if err != nil {
			return notFound(err, "notification %s not found", notificationID)
		}
		if n.RecipientID != recipientID {
			return model.Forbidden("not your notification")
		}
		if n.ReadAt == nil {
			at := s.clock()
			if err := tx.Notifications().MarkRead(ctx, notificationID, at); err != nil {
				return err
			}
			n.ReadAt = &at
		}
		out = n
		return nil
	})
	return out, err
}

func notify(ctx context.Context, tx store.Tx, recipientID string, typ model.NotificationType, actorID, requestID string, at time.Time) error {
	_, err := tx.Notifications().Create(ctx, &model.Notification{
		NotificationID: uuid.New().String(),
		RecipientID:    recipientID,
		Type:           typ,
		ActorID:        actorID,
		RequestID:      requestID,
		CreatedAt:      at,
	})
	return err
}
