//go:build invariants

package invariants

import (
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/telecomnet/telecom-social/internal/auth"
)

// TestInvariants_LiveService runs against a service started with
// SOCIAL_AUTH_MODE=dev, e.g. `go test -tags invariants ./internal/invariants`.
func TestInvariants_LiveService(t *testing.T) {
	baseURL := os.Getenv("SOCIAL_API")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	resp, err := http.Get(baseURL + "/api/health")
	require.NoError(t, err, "service must be running at %s", baseURL)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	c := NewChecker(baseURL, auth.DevToken("ops", true), func(id string) string { return auth.DevToken(id, false) })
	suffix := time.Now().UnixNano()
	a := c.CreateUser(t, fmt.Sprintf("inv_a_%d", suffix))
	b := c.CreateUser(t, fmt.Sprintf("inv_b_%d", suffix))

	t.Run("SingleLiveConnection", func(t *testing.T) { c.CheckSingleLiveConnection(t, a, b) })
	t.Run("SingleActiveBanking", func(t *testing.T) { c.CheckSingleActiveBanking(t) })
	t.Run("MessageOrdering", func(t *testing.T) { c.CheckMessageOrdering(t, a, b) })
}
