package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecomnet/telecom-social/internal/auth"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

// fakeAPI records every request and answers from a path-keyed table.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []recorded
	responses map[string]string
	status    int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{responses: map[string]string{}, status: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, auth: r.Header.Get("Authorization")}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		f.mu.Lock()
		f.calls = append(f.calls, rec)
		status := f.status
		resp, ok := f.responses[r.Method+" "+r.URL.Path]
		f.mu.Unlock()
		if !ok {
			resp = `{"ok":true}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--api", srv.URL, "--token", "dev:alice"}, args...))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUsersCreate(t *testing.T) {
	f, srv := newFakeAPI(t)
	out, err := run(t, srv, "users", "create", "-u", "bob", "-e", "bob@example.com", "--first", "Bob")
	require.NoError(t, err)
	assert.Contains(t, out, `"ok":true`)

	require.Len(t, f.calls, 1)
	c := f.calls[0]
	assert.Equal(t, "POST", c.method)
	assert.Equal(t, "/api/users", c.path)
	assert.Equal(t, "Bearer dev:alice", c.auth)
	assert.Equal(t, "bob", c.body["username"])
	assert.Equal(t, "Bob", c.body["firstName"])
	assert.NotContains(t, c.body, "userId")
}

func TestUsersList_PassesLimit(t *testing.T) {
	f, srv := newFakeAPI(t)
	_, err := run(t, srv, "users", "list", "--limit", "5")
	require.NoError(t, err)
	assert.Equal(t, "limit=5", f.calls[0].query)
}

func TestRequests(t *testing.T) {
	f, srv := newFakeAPI(t)

	_, err := run(t, srv, "requests", "send", "bob")
	require.NoError(t, err)
	_, err = run(t, srv, "requests", "respond", "req-1", "accept")
	require.NoError(t, err)
	_, err = run(t, srv, "requests", "incoming")
	require.NoError(t, err)
	_, err = run(t, srv, "requests", "outgoing")
	require.NoError(t, err)
	_, err = run(t, srv, "requests", "connections")
	require.NoError(t, err)

	require.Len(t, f.calls, 5)
	assert.Equal(t, "/api/connections/requests", f.calls[0].path)
	assert.Equal(t, "bob", f.calls[0].body["recipientId"])
	assert.Equal(t, "/api/connections/requests/req-1/action", f.calls[1].path)
	assert.Equal(t, "accept", f.calls[1].body["action"])
	assert.Equal(t, "/api/connections/requests/incoming", f.calls[2].path)
	assert.Equal(t, "/api/connections/requests/outgoing", f.calls[3].path)
	assert.Equal(t, "/api/connections", f.calls[4].path)

	_, err = run(t, srv, "requests", "respond", "req-1", "ignore")
	require.ErrorContains(t, err, "unknown action")
	assert.Len(t, f.calls, 5)
}

func TestBankingSave(t *testing.T) {
	f, srv := newFakeAPI(t)
	base := []string{"banking", "save", "--bank", "First Bank", "--account-name", "Telecom Social", "--account-number", "0001"}

	_, err := run(t, srv, append(base, "--active")...)
	require.NoError(t, err)
	_, err = run(t, srv, append(base, "--id", "rec-1")...)
	require.NoError(t, err)
	_, err = run(t, srv, append(base, "--validate")...)
	require.NoError(t, err)
	_, err = run(t, srv, "banking", "active")
	require.NoError(t, err)

	require.Len(t, f.calls, 4)
	assert.Equal(t, "POST /api/admin/banking-details", f.calls[0].method+" "+f.calls[0].path)
	assert.Equal(t, true, f.calls[0].body["isActive"])
	assert.Equal(t, "PUT /api/admin/banking-details/rec-1", f.calls[1].method+" "+f.calls[1].path)
	assert.Equal(t, false, f.calls[1].body["isActive"])
	assert.Equal(t, "/api/admin/banking-details/validate", f.calls[2].path)
	assert.Equal(t, "/api/platform/banking-details/active", f.calls[3].path)
}

func TestMessagesSendToUserStartsConversation(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.responses["POST /api/conversations"] = `{"conversationId":"conv-9"}`

	_, err := run(t, srv, "messages", "send", "--to", "bob", "--body", "hi")
	require.NoError(t, err)
	require.Len(t, f.calls, 2)
	assert.Equal(t, []any{"bob"}, f.calls[0].body["participantIds"])
	assert.Equal(t, "/api/conversations/conv-9/messages", f.calls[1].path)
	assert.Equal(t, "hi", f.calls[1].body["body"])

	_, err = run(t, srv, "messages", "send", "--body", "hi")
	require.ErrorContains(t, err, "exactly one")
}

func TestMessagesList(t *testing.T) {
	f, srv := newFakeAPI(t)
	_, err := run(t, srv, "messages", "list", "conv-1", "--after", "2024-03-01T12:00:00Z", "--limit", "10")
	require.NoError(t, err)
	assert.Equal(t, "/api/conversations/conv-1/messages", f.calls[0].path)
	assert.Contains(t, f.calls[0].query, "limit=10")
	assert.Contains(t, f.calls[0].query, "after=2024-03-01T12%3A00%3A00Z")

	_, err = run(t, srv, "messages", "list", "conv-1", "--after", "yesterday")
	require.ErrorContains(t, err, "RFC3339")
}

func TestHTTPErrorsAreReturned(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.status = http.StatusForbidden
	f.responses["GET /api/admin/banking-details"] = `{"error":"admin role required"}`

	_, err := run(t, srv, "banking", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 403")
	assert.Contains(t, err.Error(), "admin role required")
}

func TestDevToken(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"dev-token", "--user", "alice", "--admin"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, auth.DevToken("alice", true), strings.TrimSpace(out.String()))

	out.Reset()
	cmd = newRootCmd(&out)
	cmd.SetArgs([]string{"dev-token", "--user", "alice", "--secret", "s3cret", "--ttl", "1h"})
	require.NoError(t, cmd.Execute())

	p, err := auth.NewJWTAuthenticator("s3cret", "telecom-social").Authenticate(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "alice", p.UserID)
	assert.False(t, p.Admin)
}
