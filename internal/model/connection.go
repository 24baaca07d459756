package model

import "time"

// RequestState is the lifecycle state of a connection request.
type RequestState string

const (
	StatePending   RequestState = "pending"
	StateAccepted  RequestState = "accepted"
	StateDeclined  RequestState = "declined"
	StateCancelled RequestState = "cancelled"
)

// Live reports whether the state blocks a new request between the same pair.
func (s RequestState) Live() bool { return s == StatePending || s == StateAccepted }

// Valid reports whether s is a known state.
func (s RequestState) Valid() bool {
	switch s {
	case StatePending, StateAccepted, StateDeclined, StateCancelled:
		return true
	}
	return false
}

// RespondAction is what a party does to a pending request.
type RespondAction string

const (
	ActionAccept  RespondAction = "accept"
	ActionDecline RespondAction = "decline"
	ActionCancel  RespondAction = "cancel"
)

// Target returns the state an action moves a pending request to.
func (a RespondAction) Target() (RequestState, bool) {
	switch a {
	case ActionAccept:
		return StateAccepted, true
	case ActionDecline:
		return StateDeclined, true
	case ActionCancel:
		return StateCancelled, true
	}
	return "", false
}

// ConnectionRequest is a directed request from RequesterID to RecipientID.
// Records are never deleted; resending reuses the row of the same direction.
type ConnectionRequest struct {
	RequestID   string       `json:"requestId"`
	RequesterID string       `json:"requesterId"`
	RecipientID string       `json:"recipientId"`
	State       RequestState `json:"state"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Involves reports whether id is either party.
func (r *ConnectionRequest) Involves(id string) bool {
	return r.RequesterID == id || r.RecipientID == id
}

// Peer returns the party that is not id.
func (r *ConnectionRequest) Peer(id string) string {
	if r.RequesterID == id {
		return r.RecipientID
	}
	return r.RequesterID
}

// Connection is the read model of an accepted request from one party's view.
type Connection struct {
	RequestID     string      `json:"requestId"`
	Peer          UserSummary `json:"connectedUser"`
	EstablishedAt time.Time   `json:"establishedAt"`
}

// ConnectionStatus describes how a viewer relates to another identity.
type ConnectionStatus string

const (
	StatusNone            ConnectionStatus = "none"
	StatusPendingOutgoing ConnectionStatus = "pending_outgoing"
	StatusPendingIncoming ConnectionStatus = "pending_incoming"
	StatusConnected       ConnectionStatus = "connected"
)

// PairStatus is the answer to a connection status lookup.
type PairStatus struct {
	Status    ConnectionStatus `json:"status"`
	RequestID string           `json:"requestId,omitempty"`
}
