package store

import (
	"context"
	"time"

	"github.com/telecomnet/telecom-social/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
// Callers supply every timestamp so reads round-trip exactly.
type Store interface {
	Users() Users
	Profiles() Profiles
	Requests() Requests
	Conversations() Conversations
	Messages() Messages
	Banking() Banking
	Posts() Posts
	Notifications() Notifications
}

// Tx is a Store bound to a single transaction, plus the exclusive locks
// mutating operations take before they read.
type Tx interface {
	Store
	// LockPair serializes work on the unordered pair {a, b}.
	LockPair(ctx context.Context, a, b string) error
	// LockConversation serializes appends to one conversation.
	LockConversation(ctx context.Context, conversationID string) error
	// LockCollection serializes changes to a collection's active flag.
	LockCollection(ctx context.Context, name string) error
}

// DB is a Store that can run transactions.
// InTx commits when fn returns nil and rolls back otherwise, including on
// context cancellation.
type DB interface {
	Store
	InTx(ctx context.Context, fn func(tx Tx) error) error
	HealthPing(ctx context.Context) error
	Close() error
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	GetMany(ctx context.Context, userIDs []string) (map[string]*model.User, error)
	List(ctx context.Context, excludeUserID string, limit int) ([]*model.User, error)
}

type Profiles interface {
	Create(ctx context.Context, p *model.Profile) (*model.Profile, error)
	Get(ctx context.Context, userID string) (*model.Profile, error)
	UpdateBio(ctx context.Context, userID, bio string, at time.Time) (*model.Profile, error)
}

type Requests interface {
	Create(ctx context.Context, r *model.ConnectionRequest) (*model.ConnectionRequest, error)
	Get(ctx context.Context, requestID string) (*model.ConnectionRequest, error)
	// FindDirected returns the record sent by requester to recipient.
	FindDirected(ctx context.Context, requesterID, recipientID string) (*model.ConnectionRequest, error)
	UpdateState(ctx context.Context, requestID string, state model.RequestState, at time.Time) (*model.ConnectionRequest, error)
	ListIncomingPending(ctx context.Context, recipientID string) ([]*model.ConnectionRequest, error)
	ListOutgoingPending(ctx context.Context, requesterID string) ([]*model.ConnectionRequest, error)
	ListAccepted(ctx context.Context, userID string) ([]*model.ConnectionRequest, error)
	// ListBetween returns every record of the pair in both directions.
	ListBetween(ctx context.Context, a, b string) ([]*model.ConnectionRequest, error)
}

type Conversations interface {
	Create(ctx context.Context, c *model.Conversation) (*model.Conversation, error)
	Get(ctx context.Context, conversationID string) (*model.Conversation, error)
	FindByParticipants(ctx context.Context, participantKey string) (*model.Conversation, error)
	ListFor(ctx context.Context, userID string) ([]*model.Conversation, error)
	Touch(ctx context.Context, conversationID string, at time.Time) error
}

type Messages interface {
	Create(ctx context.Context, m *model.Message) (*model.Message, error)
	Get(ctx context.Context, messageID string) (*model.Message, error)
	// LastSentAt reports the newest SentAt in a conversation; ok is false when empty.
	LastSentAt(ctx context.Context, conversationID string) (t time.Time, ok bool, err error)
	List(ctx context.Context, conversationID string, page model.MessagePage) ([]*model.Message, error)
	// MarkRead sets read_at only when it is still NULL and reports whether it did.
	MarkRead(ctx context.Context, messageID string, at time.Time) (bool, error)
}

// Banking persists BankingDetails and serves as the record collection of the
// single-active enforcer.
type Banking interface {
	Get(ctx context.Context, id string) (*model.BankingDetails, error)
	List(ctx context.Context) ([]*model.BankingDetails, error)
	ListActive(ctx context.Context) ([]*model.BankingDetails, error)
	// DemoteActive clears the active flag on every record except exceptID.
	DemoteActive(ctx context.Context, exceptID string, at time.Time) ([]string, error)
	// Put inserts rec when its id is unknown and updates it otherwise.
	Put(ctx context.Context, rec *model.BankingDetails, at time.Time) (*model.BankingDetails, error)
}

type Posts interface {
	Create(ctx context.Context, p *model.Post) (*model.Post, error)
	// List returns newest first; a nil authorIDs slice means every author.
	List(ctx context.Context, authorIDs []string, limit int) ([]*model.Post, error)
}

type Notifications interface {
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
	Get(ctx context.Context, notificationID string) (*model.Notification, error)
	List(ctx context.Context, recipientID string, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, notificationID string, at time.Time) error
}
