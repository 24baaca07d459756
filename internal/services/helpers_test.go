package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/retry"
	"github.com/telecomnet/telecom-social/internal/store"
	"github.com/telecomnet/telecom-social/internal/store/sqlite"
)

// testClock returns a settable time; Advance moves it forward.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	db            store.DB
	clock         *testClock
	users         *UserService
	profiles      *ProfileService
	connections   *ConnectionService
	conversations *ConversationService
	banking       *BankingService
	posts         *PostService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "social.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := newTestClock()
	opts := []Option{
		WithClock(clock.Now),
		WithRetryPolicy(retry.Policy{MaxAttempts: 5, BaseInterval: time.Millisecond, MaxInterval: 10 * time.Millisecond}),
	}
	log := zerolog.Nop()
	env := &testEnv{db: db, clock: clock}
	env.profiles = NewProfileService(db, log, opts...)
	env.users = NewUserService(db, env.profiles, log, opts...)
	env.connections = NewConnectionService(db, log, opts...)
	env.conversations = NewConversationService(db, log, 0, opts...)
	env.banking = NewBankingService(db, log, opts...)
	env.posts = NewPostService(db, env.connections, log, opts...)
	env.notifications = NewNotificationService(db, log, opts...)
	return env
}

func (e *testEnv) mustUser(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), &model.User{Username: username, Email: username + "@example.com"})
	require.NoError(t, err)
	return u
}
