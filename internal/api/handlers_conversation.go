package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/telecomnet/telecom-social/internal/api/respond"
	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/services"
)

type ConversationHandler struct {
	svc *services.ConversationService
}

func NewConversationHandler(svc *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// StartConversation handles POST /api/conversations.
func (h *ConversationHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ParticipantIDs []string `json:"participantIds" validate:"required,min=1"`
	}
	if !decode(w, r, &in) {
		return
	}
	conv, created, err := h.svc.StartConversation(r.Context(), caller(r), in.ParticipantIDs)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond.WriteJSON(w, status, conv)
}

// ListConversations handles GET /api/conversations.
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.svc.ListConversationsFor(r.Context(), caller(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"conversations": nonNil(convs), "count": len(convs)})
}

// GetConversation handles GET /api/conversations/{conversationId}.
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.svc.GetConversation(r.Context(), mux.Vars(r)["conversationId"], caller(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, conv)
}

// AppendMessage handles POST /api/conversations/{conversationId}/messages.
func (h *ConversationHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Body string `json:"body"`
	}
	if !decode(w, r, &in) {
		return
	}
	msg, err := h.svc.AppendMessage(r.Context(), mux.Vars(r)["conversationId"], caller(r), in.Body)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, msg)
}

// ListMessages handles GET /api/conversations/{conversationId}/messages?after=&limit=.
// after is an RFC3339 timestamp; pass the last sentAt to fetch the next page.
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	var page model.MessagePage
	if raw := r.URL.Query().Get("after"); raw != "" {
		after, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			respond.WriteBadRequest(w, "after must be an RFC3339 timestamp")
			return
		}
		page.After = &after
	}
	limit, ok := queryLimit(r)
	if !ok {
		respond.WriteBadRequest(w, "limit must be a non-negative integer")
		return
	}
	page.Limit = limit

	msgs, err := h.svc.ListMessages(r.Context(), mux.Vars(r)["conversationId"], caller(r), page)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": nonNil(msgs), "count": len(msgs)})
}

// MarkRead handles POST /api/messages/{messageId}/read.
func (h *ConversationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.MarkRead(r.Context(), mux.Vars(r)["messageId"], caller(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, msg)
}
