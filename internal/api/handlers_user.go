package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/telecomnet/telecom-social/internal/api/respond"
	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/services"
)

type UserHandler struct {
	users    *services.UserService
	profiles *services.ProfileService
}

func NewUserHandler(users *services.UserService, profiles *services.ProfileService) *UserHandler {
	return &UserHandler{users: users, profiles: profiles}
}

// CreateUser handles POST /api/users (admin only).
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID    string `json:"userId"`
		Username  string `json:"username" validate:"required"`
		Email     string `json:"email" validate:"required"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if !decode(w, r, &in) {
		return
	}
	u := &model.User{UserID: in.UserID, Username: in.Username, Email: in.Email, FirstName: in.FirstName, LastName: in.LastName}
	out, err := h.users.CreateUser(r.Context(), u)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListUsers handles GET /api/users: everyone except the caller.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r)
	if !ok {
		respond.WriteBadRequest(w, "limit must be a non-negative integer")
		return
	}
	users, err := h.users.ListUsers(r.Context(), caller(r), limit)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	out := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": out, "count": len(out)})
}

// GetUser handles GET /api/users/{userId}. Only the user sees their own email.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	u, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if u.UserID == caller(r) {
		respond.WriteJSON(w, http.StatusOK, u)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u.Summary())
}

// GetMyProfile handles GET /api/profile/me.
func (h *UserHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetProfile(r.Context(), caller(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// UpdateMyProfile handles PATCH /api/profile/me.
func (h *UserHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Bio *string `json:"bio" validate:"required"`
	}
	if !decode(w, r, &in) {
		return
	}
	p, err := h.profiles.UpdateBio(r.Context(), caller(r), *in.Bio)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}
