package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecomnet/telecom-social/internal/model"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.Validation("bad"), http.StatusBadRequest},
		{model.InvalidOperation("self"), http.StatusBadRequest},
		{model.Forbidden("no"), http.StatusForbidden},
		{model.NotFound("gone"), http.StatusNotFound},
		{model.Conflict("dup"), http.StatusConflict},
		{model.Unavailable(errors.New("locked")), http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", model.Conflict("dup")), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestWriteServiceError_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteServiceError(w, model.Conflict("connection request already pending"))

	require.Equal(t, http.StatusConflict, w.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, ErrorResponse{Error: "Conflict", Code: 409, Message: "connection request already pending"}, body)
}

func TestWriteServiceError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	WriteServiceError(w, errors.New("pq: password authentication failed"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}
