package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/telecomnet/telecom-social/internal/api/respond"
	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/services"
)

type ConnectionHandler struct {
	svc *services.ConnectionService
}

func NewConnectionHandler(svc *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{svc: svc}
}

// SendRequest handles POST /api/connections/requests. A revived request
// answers 200 instead of 201.
func (h *ConnectionHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RecipientID string `json:"recipientId" validate:"required"`
	}
	if !decode(w, r, &in) {
		return
	}
	req, created, err := h.svc.SendRequest(r.Context(), caller(r), in.RecipientID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond.WriteJSON(w, status, req)
}

// Respond handles POST /api/connections/requests/{requestId}/action.
func (h *ConnectionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Action string `json:"action" validate:"required"`
	}
	if !decode(w, r, &in) {
		return
	}
	req, err := h.svc.RespondToRequest(r.Context(), mux.Vars(r)["requestId"], caller(r), model.RespondAction(in.Action))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, req)
}

// Incoming handles GET /api/connections/requests/incoming.
func (h *ConnectionHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.ListIncomingPending(r.Context(), caller(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"requests": nonNil(reqs), "count": len(reqs)})
}

// Outgoing handles GET /api/connections/requests/outgoing.
func (h *ConnectionHandler) Outgoing(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.ListOutgoingPending(r.Context(), caller(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"requests": nonNil(reqs), "count": len(reqs)})
}

// ListConnections handles GET /api/connections.
func (h *ConnectionHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.svc.ListAccepted(r.Context(), caller(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"connections": nonNil(conns), "count": len(conns)})
}

// Status handles GET /api/connections/status/{userId}.
func (h *ConnectionHandler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context(), caller(r), mux.Vars(r)["userId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, st)
}
