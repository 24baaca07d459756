package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/telecomnet/telecom-social/internal/api/respond"
	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/services"
)

type PostHandler struct {
	posts         *services.PostService
	notifications *services.NotificationService
}

func NewPostHandler(posts *services.PostService, notifications *services.NotificationService) *PostHandler {
	return &PostHandler{posts: posts, notifications: notifications}
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &in) {
		return
	}
	p, err := h.posts.Create(r.Context(), caller(r), in.Content)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, p)
}

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	h.writePosts(w, r, false)
}

// Feed handles GET /api/posts/feed: the caller's and their connections' posts.
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	h.writePosts(w, r, true)
}

func (h *PostHandler) writePosts(w http.ResponseWriter, r *http.Request, feed bool) {
	limit, ok := queryLimit(r)
	if !ok {
		respond.WriteBadRequest(w, "limit must be a non-negative integer")
		return
	}
	var (
		posts []*model.Post
		err   error
	)
	if feed {
		posts, err = h.posts.Feed(r.Context(), caller(r), limit)
	} else {
		posts, err = h.posts.List(r.Context(), limit)
	}
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"posts": nonNil(posts), "count": len(posts)})
}

func (h *PostHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r)
	if !ok {
		respond.WriteBadRequest(w, "limit must be a non-negative integer")
		return
	}
	ns, err := h.notifications.List(r.Context(), caller(r), limit)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"notifications": nonNil(ns), "count": len(ns)})
}

func (h *PostHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkRead(r.Context(), caller(r), mux.Vars(r)["notificationId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, n)
}
