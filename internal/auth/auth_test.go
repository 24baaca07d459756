package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecomnet/telecom-social/internal/config"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer abc", want: "abc"},
		{name: "missing", header: "", wantErr: ErrMissingToken},
		{name: "wrong scheme", header: "Basic abc", wantErr: ErrInvalidToken},
		{name: "empty token", header: "Bearer ", wantErr: ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := ExtractBearerToken(r)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDevAuthenticator(t *testing.T) {
	a := NewDevAuthenticator()
	ctx := context.Background()

	p, err := a.Authenticate(ctx, DevToken("alice", false))
	require.NoError(t, err)
	assert.Equal(t, &Principal{UserID: "alice"}, p)

	p, err = a.Authenticate(ctx, DevToken("root", true))
	require.NoError(t, err)
	assert.Equal(t, &Principal{UserID: "root", Admin: true}, p)

	_, err = a.Authenticate(ctx, "dev:")
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = a.Authenticate(ctx, "something-else")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTAuthenticator_RoundTrip(t *testing.T) {
	a := NewJWTAuthenticator("s3cret", "telecom-social")
	token, err := a.Sign("alice", true, time.Hour)
	require.NoError(t, err)

	p, err := a.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.UserID)
	assert.True(t, p.Admin)
}

func TestJWTAuthenticator_Rejects(t *testing.T) {
	ctx := context.Background()
	a := NewJWTAuthenticator("s3cret", "telecom-social")

	other := NewJWTAuthenticator("different", "telecom-social")
	forged, err := other.Sign("alice", true, time.Hour)
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, forged)
	require.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewJWTAuthenticator("s3cret", "someone-else")
	tok, err := wrongIssuer.Sign("alice", false, time.Hour)
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := NewJWTAuthenticator("s3cret", "telecom-social")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err = expired.Sign("alice", false, time.Hour)
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Authenticate(ctx, "not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewAuthenticator(t *testing.T) {
	cfg := config.NewForTesting()
	a, err := NewAuthenticator(cfg)
	require.NoError(t, err)
	assert.IsType(t, &DevAuthenticator{}, a)

	cfg.AuthMode = config.AuthModeJWT
	cfg.JWTSecret = "x"
	a, err = NewAuthenticator(cfg)
	require.NoError(t, err)
	assert.IsType(t, &JWTAuthenticator{}, a)

	cfg.AuthMode = "oauth"
	_, err = NewAuthenticator(cfg)
	require.Error(t, err)
}

func TestMiddlewareAndRequireAdmin(t *testing.T) {
	var seen *Principal
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := Middleware(NewDevAuthenticator())(RequireAdmin(inner))

	do := func(token string) int {
		r := httptest.NewRequest(http.MethodGet, "/api/admin/banking-details", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusUnauthorized, do("garbage"))
	assert.Equal(t, http.StatusForbidden, do(DevToken("alice", false)))
	assert.Equal(t, http.StatusNoContent, do(DevToken("root", true)))
	require.NotNil(t, seen)
	assert.Equal(t, "root", seen.UserID)
}
