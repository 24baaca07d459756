package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/telecomnet/telecom-social/internal/api/respond"
	"github.com/telecomnet/telecom-social/internal/auth"
	"github.com/telecomnet/telecom-social/internal/validate"
)

// caller returns the authenticated user id. The auth middleware guarantees
// a principal on every /api route except health.
func caller(r *http.Request) string {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		return ""
	}
	return p.UserID
}

// decode reads a JSON body into dst and checks its validate tags. It writes
// the 400 itself and reports false when the body is unusable.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// queryLimit parses ?limit=; zero lets the service choose.
func queryLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
