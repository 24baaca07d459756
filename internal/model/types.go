package model

import "time"

// User is an identity. The social core only relies on its id.
type User struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary returns the public projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{UserID: u.UserID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

// UserSummary is what other members see about an identity.
type UserSummary struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Profile holds per-identity presentation data. Exactly one exists per identity.
type Profile struct {
	UserID    string    `json:"userId"`
	Bio       string    `json:"bio"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Post is a short public update.
type Post struct {
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NotificationType enumerates what a notification is about.
type NotificationType string

const (
	NotificationConnectionRequest  NotificationType = "connection_request"
	NotificationConnectionAccepted NotificationType = "connection_accepted"
)

// Notification tells a recipient that another identity acted on a connection request.
type Notification struct {
	NotificationID string           `json:"notificationId"`
	RecipientID    string           `json:"recipientId"`
	Type           NotificationType `json:"type"`
	ActorID        string           `json:"actorId"`
	RequestID      string           `json:"requestId"`
	ReadAt         *time.Time       `json:"readAt,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// ListOptions bounds list queries. Zero Limit means the caller default.
type ListOptions struct {
	Limit int
}
