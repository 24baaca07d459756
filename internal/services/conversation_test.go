package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/telecomnet/telecom-social/internal/model"
)

func startPair(t *testing.T, env *testEnv) (alice, bob *model.User, conv *model.Conversation) {
	t.Helper()
	alice = env.mustUser(t, "alice")
	bob = env.mustUser(t, "bob")
	conv, created, err := env.conversations.StartConversation(context.Background(), alice.UserID, []string{bob.UserID})
	require.NoError(t, err)
	require.True(t, created)
	return alice, bob, conv
}

func TestConversations_StartIsIdempotentPerParticipantSet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob, conv := startPair(t, env)

	again, created, err := env.conversations.StartConversation(ctx, bob.UserID, []string{alice.UserID, bob.UserID})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, conv.ConversationID, again.ConversationID)

	_, _, err = env.conversations.StartConversation(ctx, alice.UserID, []string{alice.UserID})
	require.ErrorIs(t, err, model.ErrInvalidOperation)

	_, _, err = env.conversations.StartConversation(ctx, alice.UserID, []string{"ghost"})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestConversations_AppendAndList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob, conv := startPair(t, env)

	m1, err := env.conversations.AppendMessage(ctx, conv.ConversationID, alice.UserID, "hi bob")
	require.NoError(t, err)
	env.clock.Advance(time.Millisecond)
	m2, err := env.conversations.AppendMessage(ctx, conv.ConversationID, bob.UserID, "hi alice")
	require.NoError(t, err)
	assert.True(t, m2.SentAt.After(m1.SentAt))

	msgs, err := env.conversations.ListMessages(ctx, conv.ConversationID, alice.UserID, model.MessagePage{})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, m1.MessageID, msgs[0].MessageID)
	assert.Equal(t, m2.MessageID, msgs[1].MessageID)

	got, err := env.conversations.GetConversation(ctx, conv.ConversationID, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, m2.SentAt, got.UpdatedAt, "append bumps the conversation")

	carol := env.mustUser(t, "carol")
	_, err = env.conversations.AppendMessage(ctx, conv.ConversationID, carol.UserID, "let me in")
	require.ErrorIs(t, err, model.ErrForbidden)
	_, err = env.conversations.ListMessages(ctx, conv.ConversationID, carol.UserID, model.MessagePage{})
	require.ErrorIs(t, err, model.ErrForbidden)
	_, err = env.conversations.AppendMessage(ctx, "missing", alice.UserID, "hello?")
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = env.conversations.AppendMessage(ctx, conv.ConversationID, alice.UserID, "   ")
	require.ErrorIs(t, err, model.ErrValidation)
	_, err = env.conversations.AppendMessage(ctx, conv.ConversationID, alice.UserID, strings.Repeat("x", DefaultMaxMessageLength+1))
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestConversations_FrozenClockIsClamped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob, conv := startPair(t, env)

	var sent []*model.Message
	for i := 0; i < 5; i++ {
		sender := alice.UserID
		if i%2 == 1 {
			sender = bob.UserID
		}
		m, err := env.conversations.AppendMessage(ctx, conv.ConversationID, sender, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
		sent = append(sent, m)
	}
	for i := 1; i < len(sent); i++ {
		assert.Equal(t, sent[i-1].SentAt.Add(time.Microsecond), sent[i].SentAt)
	}
}

func TestConversations_ClockGoingBackwardsKeepsOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, _, conv := startPair(t, env)

	m1, err := env.conversations.AppendMessage(ctx, conv.ConversationID, alice.UserID, "first")
	require.NoError(t, err)
	env.clock.Advance(-time.Hour)
	m2, err := env.conversations.AppendMessage(ctx, conv.ConversationID, alice.UserID, "second")
	require.NoError(t, err)
	assert.True(t, m2.SentAt.After(m1.SentAt))
}

func TestConversations_ConcurrentAppendsAreTotallyOrdered(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob, conv := startPair(t, env)

	const n = 20
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		sender := alice.UserID
		if i%2 == 1 {
			sender = bob.UserID
		}
		g.Go(func() error {
			_, err := env.conversations.AppendMessage(ctx, conv.ConversationID, sender, fmt.Sprintf("msg %d", i))
			return err
		})
	}
	require.NoError(t, g.Wait())

	msgs, err := env.conversations.ListMessages(ctx, conv.ConversationID, alice.UserID, model.MessagePage{Limit: 100})
	require.NoError(t, err)
	require.Len(t, msgs, n)
	for i := 1; i < len(msgs); i++ {
		assert.True(t, msgs[i].SentAt.After(msgs[i-1].SentAt), "sentAt must strictly increase")
	}

	again, err := env.conversations.ListMessages(ctx, conv.ConversationID, bob.UserID, model.MessagePage{Limit: 100})
	require.NoError(t, err)
	for i := range msgs {
		assert.Equal(t, msgs[i].MessageID, again[i].MessageID, "listing is stable")
	}
}

func TestConversations_ListMessagesPaging(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, _, conv := startPair(t, env)

	for i := 0; i < 7; i++ {
		_, err := env.conversations.AppendMessage(ctx, conv.ConversationID, alice.UserID, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	var all []*model.Message
	page := model.MessagePage{Limit: 3}
	for {
		got, err := env.conversations.ListMessages(ctx, conv.ConversationID, alice.UserID, page)
		require.NoError(t, err)
		if len(got) == 0 {
			break
		}
		all = append(all, got...)
		last := got[len(got)-1].SentAt
		page.After = &last
	}
	require.Len(t, all, 7)
	for i, m := range all {
		assert.Equal(t, fmt.Sprintf("m%d", i), m.Body)
	}
}

func TestConversations_MarkRead(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob, conv := startPair(t, env)
	carol := env.mustUser(t, "carol")

	m, err := env.conversations.AppendMessage(ctx, conv.ConversationID, alice.UserID, "read me")
	require.NoError(t, err)

	_, err = env.conversations.MarkRead(ctx, m.MessageID, alice.UserID)
	require.ErrorIs(t, err, model.ErrForbidden, "sender cannot read-receipt")
	_, err = env.conversations.MarkRead(ctx, m.MessageID, carol.UserID)
	require.ErrorIs(t, err, model.ErrForbidden)
	_, err = env.conversations.MarkRead(ctx, "missing", bob.UserID)
	require.ErrorIs(t, err, model.ErrNotFound)

	env.clock.Advance(time.Second)
	first, err := env.conversations.MarkRead(ctx, m.MessageID, bob.UserID)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)
	assert.False(t, first.ReadAt.Before(m.SentAt))

	env.clock.Advance(time.Second)
	second, err := env.conversations.MarkRead(ctx, m.MessageID, bob.UserID)
	require.NoError(t, err)
	require.NotNil(t, second.ReadAt)
	assert.Equal(t, *first.ReadAt, *second.ReadAt)
}

func TestConversations_ReadAtNeverPrecedesSentAt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, bob, conv := startPair(t, env)

	_, err := env.conversations.AppendMessage(ctx, conv.ConversationID, alice.UserID, "one")
	require.NoError(t, err)
	m2, err := env.conversations.AppendMessage(ctx, conv.ConversationID, alice.UserID, "two")
	require.NoError(t, err)

	receipt, err := env.conversations.MarkRead(ctx, m2.MessageID, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, m2.SentAt, *receipt.ReadAt, "clamped sentAt is ahead of the frozen clock")
}

func TestConversations_ListForOrdersByActivity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice, _, withBob := startPair(t, env)
	carol := env.mustUser(t, "carol")

	env.clock.Advance(time.Second)
	withCarol, _, err := env.conversations.StartConversation(ctx, alice.UserID, []string{carol.UserID})
	require.NoError(t, err)

	list, err := env.conversations.ListConversationsFor(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, withCarol.ConversationID, list[0].ConversationID)

	env.clock.Advance(time.Second)
	_, err = env.conversations.AppendMessage(ctx, withBob.ConversationID, alice.UserID, "bump")
	require.NoError(t, err)

	list, err = env.conversations.ListConversationsFor(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, withBob.ConversationID, list[0].ConversationID)

	list, err = env.conversations.ListConversationsFor(ctx, carol.UserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
