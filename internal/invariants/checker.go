// Package invariants exercises system-wide guarantees through the public
// HTTP API only. The same checks run in-process and against a live service.
package invariants

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/telecomnet/telecom-social/internal/model"
)

// Checker drives the API as an external client.
type Checker struct {
	baseURL    string
	adminToken string
	client     *http.Client
	token      func(userID string) string
}

// NewChecker builds a checker. token maps a user id to a bearer token;
// adminToken must carry the admin role.
func NewChecker(baseURL, adminToken string, token func(userID string) string) *Checker {
	return &Checker{
		baseURL:    baseURL,
		adminToken: adminToken,
		token:      token,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateUser registers a user through the admin endpoint and returns its id.
func (c *Checker) CreateUser(t *testing.T, username string) string {
	body := c.request(t, c.adminToken, http.MethodPost, "/api/users",
		map[string]string{"username": username, "email": username + "@example.com"}, http.StatusCreated)
	var u model.User
	require.NoError(t, json.Unmarshal(body, &u))
	require.NotEmpty(t, u.UserID)
	return u.UserID
}

// CheckSingleLiveConnection races requests in both directions of one pair.
// At most one live record may come out of it.
func (c *Checker) CheckSingleLiveConnection(t *testing.T, a, b string) {
	const rounds = 6
	var g errgroup.Group
	for i := 0; i < rounds; i++ {
		from, to := a, b
		if i%2 == 1 {
			from, to = b, a
		}
		g.Go(func() error {
			status, body, err := c.do(c.token(from), http.MethodPost, "/api/connections/requests",
				map[string]string{"recipientId": to})
			if err != nil {
				return err
			}
			switch status {
			case http.StatusCreated, http.StatusOK, http.StatusConflict:
				return nil
			}
			return fmt.Errorf("send %s->%s: unexpected %d: %s", from, to, status, body)
		})
	}
	require.NoError(t, g.Wait())

	var out, in struct {
		Requests []model.ConnectionRequest `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(c.request(t, c.token(a), http.MethodGet, "/api/connections/requests/outgoing", nil, http.StatusOK), &out))
	require.NoError(t, json.Unmarshal(c.request(t, c.token(a), http.MethodGet, "/api/connections/requests/incoming", nil, http.StatusOK), &in))

	live := 0
	for _, r := range append(out.Requests, in.Requests...) {
		if r.Involves(b) {
			live++
		}
	}
	assert.Equal(t, 1, live, "exactly one pending record between the pair")

	var st model.PairStatus
	require.NoError(t, json.Unmarshal(c.request(t, c.token(a), http.MethodGet, "/api/connections/status/"+b, nil, http.StatusOK), &st))
	assert.Contains(t, []model.ConnectionStatus{model.StatusPendingOutgoing, model.StatusPendingIncoming}, st.Status)
}

// CheckSingleActiveBanking races activations and expects one active record.
func (c *Checker) CheckSingleActiveBanking(t *testing.T) {
	const writers = 6
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		i := i
		g.Go(func() error {
			status, body, err := c.do(c.adminToken, http.MethodPost, "/api/admin/banking-details", map[string]any{
				"bankName":      fmt.Sprintf("Bank %d", i),
				"accountName":   "Telecom Social",
				"accountNumber": fmt.Sprintf("00%d", i),
				"isActive":      true,
			})
			if err != nil {
				return err
			}
			if status != http.StatusCreated {
				return fmt.Errorf("create banking record: unexpected %d: %s", status, body)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var list struct {
		BankingDetails []model.BankingDetails `json:"bankingDetails"`
	}
	require.NoError(t, json.Unmarshal(c.request(t, c.adminToken, http.MethodGet, "/api/admin/banking-details", nil, http.StatusOK), &list))
	active := 0
	for _, r := range list.BankingDetails {
		if r.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active, "exactly one active banking record")

	var got model.BankingDetails
	require.NoError(t, json.Unmarshal(c.request(t, c.adminToken, http.MethodGet, "/api/platform/banking-details/active", nil, http.StatusOK), &got))
	assert.True(t, got.IsActive)
}

// CheckMessageOrdering appends concurrently from both participants and
// expects a strictly increasing, stable history.
func (c *Checker) CheckMessageOrdering(t *testing.T, a, b string) {
	var conv model.Conversation
	require.NoError(t, json.Unmarshal(c.requestAny(t, c.token(a), http.MethodPost, "/api/conversations",
		map[string][]string{"participantIds": {b}}, http.StatusCreated, http.StatusOK), &conv))

	const n = 12
	path := "/api/conversations/" + conv.ConversationID + "/messages"
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		sender := a
		if i%2 == 1 {
			sender = b
		}
		g.Go(func() error {
			status, body, err := c.do(c.token(sender), http.MethodPost, path, map[string]string{"body": fmt.Sprintf("msg %d", i)})
			if err != nil {
				return err
			}
			if status != http.StatusCreated {
				return fmt.Errorf("append: unexpected %d: %s", status, body)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	list := func(viewer string) []model.Message {
		var page struct {
			Messages []model.Message `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(c.request(t, c.token(viewer), http.MethodGet, path+"?limit=100", nil, http.StatusOK), &page))
		return page.Messages
	}
	first := list(a)
	require.Len(t, first, n)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i].SentAt.After(first[i-1].SentAt), "sentAt strictly increases at %d", i)
	}
	second := list(b)
	require.Len(t, second, n)
	for i := range first {
		assert.Equal(t, first[i].MessageID, second[i].MessageID, "history is stable")
	}
}

func (c *Checker) request(t *testing.T, token, method, path string, body any, expectedStatus int) []byte {
	return c.requestAny(t, token, method, path, body, expectedStatus)
}

func (c *Checker) requestAny(t *testing.T, token, method, path string, body any, expected ...int) []byte {
	t.Helper()
	status, respBody, err := c.do(token, method, path, body)
	require.NoError(t, err)
	require.Contains(t, expected, status, "%s %s returned %d: %s", method, path, status, respBody)
	return respBody
}

// do is safe to call from goroutines; it never touches t.
func (c *Checker) do(token, method, path string, body any) (int, []byte, error) {
	var reqBody []byte
	if body != nil {
		var err error
		if reqBody, err = json.Marshal(body); err != nil {
			return 0, nil, err
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, err
}
