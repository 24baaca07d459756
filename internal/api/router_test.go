package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecomnet/telecom-social/internal/auth"
	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/retry"
	"github.com/telecomnet/telecom-social/internal/services"
	"github.com/telecomnet/telecom-social/internal/store/sqlite"
)

type apiEnv struct {
	server *httptest.Server
	users  *services.UserService
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "social.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := zerolog.Nop()
	opts := []services.Option{services.WithRetryPolicy(retry.Policy{MaxAttempts: 3, BaseInterval: time.Millisecond})}
	profiles := services.NewProfileService(db, log, opts...)
	users := services.NewUserService(db, profiles, log, opts...)
	connections := services.NewConnectionService(db, log, opts...)

	router := NewRouter(Deps{
		Users:          users,
		Profiles:       profiles,
		Connections:    connections,
		Conversations:  services.NewConversationService(db, log, 0, opts...),
		Banking:        services.NewBankingService(db, log, opts...),
		Posts:          services.NewPostService(db, connections, log, opts...),
		Notifications:  services.NewNotificationService(db, log, opts...),
		Auth:           auth.NewDevAuthenticator(),
		Healthy:        func() bool { return true },
		MetricsEnabled: true,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &apiEnv{server: srv, users: users}
}

func (e *apiEnv) user(t *testing.T, username string) string {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), &model.User{Username: username, Email: username + "@example.com"})
	require.NoError(t, err)
	return u.UserID
}

// call sends a JSON request as token and decodes the response into out when non-nil.
func (e *apiEnv) call(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.server.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestRouter_HealthAndMetricsAreOpen(t *testing.T) {
	env := newAPIEnv(t)
	var health map[string]interface{}
	assert.Equal(t, http.StatusOK, env.call(t, "GET", "/api/health", "", nil, &health))
	assert.Equal(t, "healthy", health["status"])

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	env := newAPIEnv(t)
	assert.Equal(t, http.StatusUnauthorized, env.call(t, "GET", "/api/connections", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.call(t, "GET", "/api/connections", "bogus", nil, nil))
}

func TestRouter_ConnectionFlow(t *testing.T) {
	env := newAPIEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	aliceTok, bobTok := auth.DevToken(alice, false), auth.DevToken(bob, false)

	var req model.ConnectionRequest
	require.Equal(t, http.StatusCreated, env.call(t, "POST", "/api/connections/requests", aliceTok, map[string]string{"recipientId": bob}, &req))
	assert.Equal(t, model.StatePending, req.State)

	var errBody struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.Equal(t, http.StatusConflict, env.call(t, "POST", "/api/connections/requests", bobTok, map[string]string{"recipientId": alice}, &errBody))
	assert.Equal(t, http.StatusConflict, errBody.Code)

	var incoming struct {
		Requests []model.ConnectionRequest `json:"requests"`
		Count    int                       `json:"count"`
	}
	require.Equal(t, http.StatusOK, env.call(t, "GET", "/api/connections/requests/incoming", bobTok, nil, &incoming))
	require.Equal(t, 1, incoming.Count)
	assert.Equal(t, req.RequestID, incoming.Requests[0].RequestID)

	var status model.PairStatus
	require.Equal(t, http.StatusOK, env.call(t, "GET", "/api/connections/status/"+alice, bobTok, nil, &status))
	assert.Equal(t, model.StatusPendingIncoming, status.Status)

	path := fmt.Sprintf("/api/connections/requests/%s/action", req.RequestID)
	assert.Equal(t, http.StatusForbidden, env.call(t, "POST", path, aliceTok, map[string]string{"action": "accept"}, nil))
	assert.Equal(t, http.StatusBadRequest, env.call(t, "POST", path, bobTok, map[string]string{"action": "block"}, nil))
	require.Equal(t, http.StatusOK, env.call(t, "POST", path, bobTok, map[string]string{"action": "accept"}, &req))
	assert.Equal(t, model.StateAccepted, req.State)

	var conns struct {
		Connections []model.Connection `json:"connections"`
	}
	require.Equal(t, http.StatusOK, env.call(t, "GET", "/api/connections", aliceTok, nil, &conns))
	require.Len(t, conns.Connections, 1)
	assert.Equal(t, bob, conns.Connections[0].Peer.UserID)
}

func TestRouter_SelfRequestIsBadRequest(t *testing.T) {
	env := newAPIEnv(t)
	alice := env.user(t, "alice")
	code := env.call(t, "POST", "/api/connections/requests", auth.DevToken(alice, false), map[string]string{"recipientId": alice}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_ConversationFlow(t *testing.T) {
	env := newAPIEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")
	aliceTok, bobTok := auth.DevToken(alice, false), auth.DevToken(bob, false)

	var conv model.Conversation
	require.Equal(t, http.StatusCreated, env.call(t, "POST", "/api/conversations", aliceTok, map[string][]string{"participantIds": {bob}}, &conv))
	require.Equal(t, http.StatusOK, env.call(t, "POST", "/api/conversations", bobTok, map[string][]string{"participantIds": {alice}}, nil))

	msgsPath := "/api/conversations/" + conv.ConversationID + "/messages"
	var first, second model.Message
	require.Equal(t, http.StatusCreated, env.call(t, "POST", msgsPath, aliceTok, map[string]string{"body": "hello"}, &first))
	require.Equal(t, http.StatusCreated, env.call(t, "POST", msgsPath, bobTok, map[string]string{"body": "hey"}, &second))
	assert.True(t, second.SentAt.After(first.SentAt))

	assert.Equal(t, http.StatusForbidden, env.call(t, "POST", msgsPath, auth.DevToken(carol, false), map[string]string{"body": "hi"}, nil))
	assert.Equal(t, http.StatusBadRequest, env.call(t, "POST", msgsPath, aliceTok, map[string]string{"body": ""}, nil))

	var page struct {
		Messages []model.Message `json:"messages"`
	}
	require.Equal(t, http.StatusOK, env.call(t, "GET", msgsPath, bobTok, nil, &page))
	require.Len(t, page.Messages, 2)

	after := url.QueryEscape(first.SentAt.Format(time.RFC3339Nano))
	require.Equal(t, http.StatusOK, env.call(t, "GET", msgsPath+"?after="+after, bobTok, nil, &page))
	require.Len(t, page.Messages, 1)
	assert.Equal(t, second.MessageID, page.Messages[0].MessageID)
	assert.Equal(t, http.StatusBadRequest, env.call(t, "GET", msgsPath+"?after=yesterday", bobTok, nil, nil))

	readPath := "/api/messages/" + first.MessageID + "/read"
	assert.Equal(t, http.StatusForbidden, env.call(t, "POST", readPath, aliceTok, nil, nil))
	var read model.Message
	require.Equal(t, http.StatusOK, env.call(t, "POST", readPath, bobTok, nil, &read))
	require.NotNil(t, read.ReadAt)
}

func TestRouter_BankingDetails(t *testing.T) {
	env := newAPIEnv(t)
	alice := env.user(t, "alice")
	member := auth.DevToken(alice, false)
	admin := auth.DevToken("ops", true)

	var empty map[string]interface{}
	require.Equal(t, http.StatusOK, env.call(t, "GET", "/api/platform/banking-details/active", member, nil, &empty))
	assert.Empty(t, empty)

	r1 := map[string]interface{}{"bankName": "R1 Bank", "accountName": "Telecom", "accountNumber": "111", "isActive": true}
	r2 := map[string]interface{}{"bankName": "R2 Bank", "accountName": "Telecom", "accountNumber": "222", "isActive": true}

	assert.Equal(t, http.StatusForbidden, env.call(t, "POST", "/api/admin/banking-details", member, r1, nil))

	var saved1, saved2 model.BankingDetails
	require.Equal(t, http.StatusCreated, env.call(t, "POST", "/api/admin/banking-details", admin, r1, &saved1))
	assert.Equal(t, http.StatusConflict, env.call(t, "POST", "/api/admin/banking-details/validate", admin, r2, nil))
	require.Equal(t, http.StatusCreated, env.call(t, "POST", "/api/admin/banking-details", admin, r2, &saved2))

	var active model.BankingDetails
	require.Equal(t, http.StatusOK, env.call(t, "GET", "/api/platform/banking-details/active", member, nil, &active))
	assert.Equal(t, saved2.ID, active.ID)

	var list struct {
		BankingDetails []model.BankingDetails `json:"bankingDetails"`
	}
	require.Equal(t, http.StatusOK, env.call(t, "GET", "/api/admin/banking-details", admin, nil, &list))
	require.Len(t, list.BankingDetails, 2)
	for _, b := range list.BankingDetails {
		assert.Equal(t, b.ID == saved2.ID, b.IsActive)
	}

	missing := map[string]interface{}{"bankName": "x"}
	assert.Equal(t, http.StatusBadRequest, env.call(t, "POST", "/api/admin/banking-details", admin, missing, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, "PUT", "/api/admin/banking-details/nope", admin, r1, nil))
}

func TestRouter_UsersProfilesPostsNotifications(t *testing.T) {
	env := newAPIEnv(t)
	admin := auth.DevToken("ops", true)

	var alice model.User
	require.Equal(t, http.StatusCreated, env.call(t, "POST", "/api/users", admin,
		map[string]string{"username": "alice", "email": "alice@example.com"}, &alice))
	bob := env.user(t, "bob")
	aliceTok := auth.DevToken(alice.UserID, false)

	assert.Equal(t, http.StatusForbidden, env.call(t, "POST", "/api/users", aliceTok,
		map[string]string{"username": "mallory", "email": "m@example.com"}, nil))

	var other map[string]interface{}
	require.Equal(t, http.StatusOK, env.call(t, "GET", "/api/users/"+bob, aliceTok, nil, &other))
	assert.NotContains(t, other, "email")

	var profile model.Profile
	require.Equal(t, http.StatusOK, env.call(t, "PATCH", "/api/profile/me", aliceTok, map[string]string{"bio": "hello"}, &profile))
	assert.Equal(t, "hello", profile.Bio)

	require.Equal(t, http.StatusCreated, env.call(t, "POST", "/api/posts", aliceTok, map[string]string{"content": "first post"}, nil))
	var feed struct {
		Posts []model.Post `json:"posts"`
	}
	require.Equal(t, http.StatusOK, env.call(t, "GET", "/api/posts/feed", aliceTok, nil, &feed))
	require.Len(t, feed.Posts, 1)

	require.Equal(t, http.StatusCreated, env.call(t, "POST", "/api/connections/requests", aliceTok, map[string]string{"recipientId": bob}, nil))
	var notes struct {
		Notifications []model.Notification `json:"notifications"`
	}
	bobTok := auth.DevToken(bob, false)
	require.Equal(t, http.StatusOK, env.call(t, "GET", "/api/notifications", bobTok, nil, &notes))
	require.Len(t, notes.Notifications, 1)
	assert.Equal(t, http.StatusForbidden, env.call(t, "POST", "/api/notifications/"+notes.Notifications[0].NotificationID+"/read", aliceTok, nil, nil))
	assert.Equal(t, http.StatusOK, env.call(t, "POST", "/api/notifications/"+notes.Notifications[0].NotificationID+"/read", bobTok, nil, nil))
}
