package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/telecomnet/telecom-social/internal/metrics"
	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/store"
	"github.com/telecomnet/telecom-social/internal/validate"
)

// DefaultMaxMessageLength bounds a message body in bytes.
const DefaultMaxMessageLength = 4000

// ConversationService keeps every conversation log totally ordered: appends
// hold the conversation lock and never reuse or go below the last sentAt.
type ConversationService struct {
	base
	maxBody int
}

func NewConversationService(db store.DB, log zerolog.Logger, maxBody int, opts ...Option) *ConversationService {
	if maxBody <= 0 {
		maxBody = DefaultMaxMessageLength
	}
	return &ConversationService{base: newBase(db, log, "conversations", opts), maxBody: maxBody}
}

// StartConversation returns the conversation of creator and participants,
// creating it when that exact set has none yet.
func (s *ConversationService) StartConversation(ctx context.Context, creatorID string, participantIDs []string) (conv *model.Conversation, created bool, err error) {
	if err := requireID("creatorId", creatorID); err != nil {
		return nil, false, err
	}
	if slices.Contains(participantIDs, "") {
		return nil, false, model.Validation("participant ids must not be empty")
	}
	ids := lo.Uniq(append([]string{creatorID}, participantIDs...))
	if len(ids) < 2 {
		return nil, false, model.InvalidOperation("a conversation needs at least two participants")
	}
	slices.Sort(ids)
	key := model.ParticipantKey(ids)

	err = s.inTx(ctx, "conversations.start", func(tx store.Tx) error {
		created = false
		if _, err := requireUsers(ctx, tx, ids...); err != nil {
			return err
		}
		existing, err := tx.Conversations().FindByParticipants(ctx, key)
		if err == nil {
			conv = existing
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		now := s.clock()
		conv, err = tx.Conversations().Create(ctx, &model.Conversation{
			ConversationID: uuid.New().String(),
			Participants:   ids,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		created = err == nil
		return err
	})
	if errors.Is(err, store.ErrDuplicate) {
		// Lost a creation race for the same set; the winner's row is the answer.
		conv, err = read(ctx, &s.base, "conversations.find", func(ctx context.Context) (*model.Conversation, error) {
			return s.db.Conversations().FindByParticipants(ctx, key)
		})
		return conv, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return conv, created, nil
}

// GetConversation returns a conversation viewerID takes part in.
func (s *ConversationService) GetConversation(ctx context.Context, conversationID, viewerID string) (*model.Conversation, error) {
	conv, err := read(ctx, &s.base, "conversations.get", func(ctx context.Context) (*model.Conversation, error) {
		return s.db.Conversations().Get(ctx, conversationID)
	})
	if err != nil {
		return nil, notFound(err, "conversation %s not found", conversationID)
	}
	if !conv.HasParticipant(viewerID) {
		return nil, model.Forbidden("not a participant of this conversation")
	}
	return conv, nil
}

// AppendMessage adds body to the end of the conversation log. sentAt is the
// current time, moved to one microsecond past the previous message when the
// clock has not advanced beyond it.
func (s *ConversationService) AppendMessage(ctx context.Context, conversationID, senderID, body string) (*model.Message, error) {
	if err := requireID("conversationId", conversationID); err != nil {
		return nil, err
	}

	var (
		out     *model.Message
		clamped bool
	)
	err := s.inTx(ctx, "conversations.append", func(tx store.Tx) error {
		clamped = false
		if err := tx.LockConversation(ctx, conversationID); err != nil {
			return notFound(err, "conversation %s not found", conversationID)
		}
		conv, err := tx.Conversations().Get(ctx, conversationID)
		if err != nil {
			return notFound(err, "conversation %s not found", conversationID)
		}
		if !conv.HasParticipant(senderID) {
			return model.Forbidden("not a participant of this conversation")
		}
		if err := validate.MessageBody(body, s.maxBody); err != nil {
			return model.Validation("%s", err.Error())
		}

		sentAt := s.clock()
		last, ok, err := tx.Messages().LastSentAt(ctx, conversationID)
		if err != nil {
			return err
		}
		if ok && !sentAt.After(last) {
			sentAt = last.Add(time.Microsecond)
			clamped = true
		}

		out, err = tx.Messages().Create(ctx, &model.Message{
			MessageID:      uuid.New().String(),
			ConversationID: conversationID,
			SenderID:       senderID,
			Body:           body,
			SentAt:         sentAt,
		})
		if err != nil {
			return err
		}
		return tx.Conversations().Touch(ctx, conversationID, sentAt)
	})
	if err != nil {
		return nil, err
	}

	metrics.MessagesAppended.Inc()
	if clamped {
		metrics.MessageClockClamps.Inc()
		s.log.Debug().Str("conversation_id", conversationID).Time("sent_at", out.SentAt).Msg("message timestamp clamped")
	}
	return out, nil
}

// ListMessages returns a window of the log, oldest first. page.After is an
// exclusive sentAt cursor; feeding back the last sentAt walks the whole log.
func (s *ConversationService) ListMessages(ctx context.Context, conversationID, viewerID string, page model.MessagePage) ([]*model.Message, error) {
	if _, err := s.GetConversation(ctx, conversationID, viewerID); err != nil {
		return nil, err
	}
	page.Limit = clampLimit(page.Limit)
	return read(ctx, &s.base, "conversations.messages", func(ctx context.Context) ([]*model.Message, error) {
		return s.db.Messages().List(ctx, conversationID, page)
	})
}

// MarkRead records that readerID has read a message sent by someone else.
// The first receipt wins; later calls return the message unchanged.
func (s *ConversationService) MarkRead(ctx context.Context, messageID, readerID string) (*model.Message, error) {
	if err := requireID("messageId", messageID); err != nil {
		return nil, err
	}
	var out *model.Message
	err := s.inTx(ctx, "conversations.mark_read", func(tx store.Tx) error {
		msg, err := tx.Messages().Get(ctx, messageID)
		if err != nil {
			return notFound(err, "message %s not found", messageID)
		}
		conv, err := tx.Conversations().Get(ctx, msg.ConversationID)
		if err != nil {
			return notFound(err, "conversation %s not found", msg.ConversationID)
		}
		if !conv.HasParticipant(readerID) {
			return model.Forbidden("not a participant of this conversation")
		}
		if msg.SenderID == readerID {
			return model.Forbidden("cannot mark your own message as read")
		}
		if msg.ReadAt != nil {
			out = msg
			return nil
		}

		at := s.clock()
		if at.Before(msg.SentAt) {
			at = msg.SentAt
		}
		updated, err := tx.Messages().MarkRead(ctx, messageID, at)
		if err != nil {
			return err
		}
		if !updated {
			out, err = tx.Messages().Get(ctx, messageID)
			return err
		}
		msg.ReadAt = &at
		out = msg
		return nil
	})
	return out, err
}

// ListConversationsFor returns userID's conversations, most recently active first.
func (s *ConversationService) ListConversationsFor(ctx context.Context, userID string) ([]*model.Conversation, error) {
	return read(ctx, &s.base, "conversations.list", func(ctx context.Context) ([]*model.Conversation, error) {
		return s.db.Conversations().ListFor(ctx, userID)
	})
}
