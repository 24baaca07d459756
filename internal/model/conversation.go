package model

import (
	"slices"
	"strings"
	"time"
)

// Conversation is a fixed set of participants with an append-only message log.
type Conversation struct {
	ConversationID string    `json:"conversationId"`
	Participants   []string  `json:"participants"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HasParticipant reports whether id belongs to the conversation.
func (c *Conversation) HasParticipant(id string) bool {
	return slices.Contains(c.Participants, id)
}

// ParticipantKey is the canonical identity of a participant set.
func ParticipantKey(ids []string) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return strings.Join(sorted, ",")
}

// Message is one entry in a conversation log.
// SentAt is strictly increasing within a conversation.
type Message struct {
	MessageID      string     `json:"messageId"`
	ConversationID string     `json:"conversationId"`
	SenderID       string     `json:"senderId"`
	Body           string     `json:"body"`
	SentAt         time.Time  `json:"sentAt"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
}

// MessagePage selects a window of a conversation log, oldest first.
// After is exclusive.
type MessagePage struct {
	After *time.Time
	Limit int
}
