package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/store"
)

// Run exercises a compliance suite against a store.DB implementation.
// makeStore must return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.DB) {
	t.Helper()

	t.Run("Users", func(t *testing.T) { testUsers(t, makeStore(t)) })
	t.Run("Profiles", func(t *testing.T) { testProfiles(t, makeStore(t)) })
	t.Run("Requests", func(t *testing.T) { testRequests(t, makeStore(t)) })
	t.Run("Conversations", func(t *testing.T) { testConversations(t, makeStore(t)) })
	t.Run("Messages", func(t *testing.T) { testMessages(t, makeStore(t)) })
	t.Run("Banking", func(t *testing.T) { testBanking(t, makeStore(t)) })
	t.Run("Posts", func(t *testing.T) { testPosts(t, makeStore(t)) })
	t.Run("Notifications", func(t *testing.T) { testNotifications(t, makeStore(t)) })
	t.Run("Transactions", func(t *testing.T) { testTransactions(t, makeStore(t)) })
}

// base is a fixed instant with sub-microsecond noise stripped.
var base = time.Date(2024, 5, 1, 12, 0, 0, 123456000, time.UTC)

func at(offset time.Duration) time.Time { return base.Add(offset) }

func newUser(t *testing.T, s store.Store, name string) *model.User {
	t.Helper()
	id := uuid.New().String()
	u, err := s.Users().Create(context.Background(), &model.User{
		UserID:    id,
		Username:  name + "_" + id[:8],
		Email:     id + "@example.test",
		FirstName: name,
		CreatedAt: base,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func testUsers(t *testing.T, s store.DB) {
	ctx := context.Background()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")

	got, err := s.Users().Get(ctx, alice.UserID)
	if err != nil || got.Username != alice.Username || !got.CreatedAt.Equal(base) {
		t.Fatalf("Get: got=%+v err=%v", got, err)
	}
	if got.CreatedAt.Location() != time.UTC {
		t.Fatalf("times must come back in UTC, got %s", got.CreatedAt.Location())
	}

	if _, err := s.Users().Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}

	dup := *alice
	dup.UserID = uuid.New().String()
	if _, err := s.Users().Create(ctx, &dup); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate username: want ErrDuplicate, got %v", err)
	}

	many, err := s.Users().GetMany(ctx, []string{alice.UserID, bob.UserID, "missing"})
	if err != nil || len(many) != 2 || many[bob.UserID] == nil {
		t.Fatalf("GetMany: n=%d err=%v", len(many), err)
	}

	others, err := s.Users().List(ctx, alice.UserID, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, u := range others {
		if u.UserID == alice.UserID {
			t.Fatalf("List must exclude the viewer")
		}
	}
	if len(others) != 1 {
		t.Fatalf("List: want 1 other user, got %d", len(others))
	}
}

func testProfiles(t *testing.T, s store.DB) {
	ctx := context.Background()
	alice := newUser(t, s, "alice")

	if _, err := s.Profiles().Create(ctx, &model.Profile{UserID: alice.UserID, UpdatedAt: base}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Profiles().Create(ctx, &model.Profile{UserID: alice.UserID, UpdatedAt: base}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("second profile: want ErrDuplicate, got %v", err)
	}
	p, err := s.Profiles().UpdateBio(ctx, alice.UserID, "network engineer", at(time.Minute))
	if err != nil || p.Bio != "network engineer" || !p.UpdatedAt.Equal(at(time.Minute)) {
		t.Fatalf("UpdateBio: got=%+v err=%v", p, err)
	}
	if _, err := s.Profiles().UpdateBio(ctx, "missing", "x", base); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("UpdateBio missing: want ErrNotFound, got %v", err)
	}
}

func testRequests(t *testing.T, s store.DB) {
	ctx := context.Background()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")
	carol := newUser(t, s, "carol")

	ab, err := s.Requests().Create(ctx, &model.ConnectionRequest{
		RequestID: uuid.New().String(), RequesterID: alice.UserID, RecipientID: bob.UserID,
		State: model.StatePending, CreatedAt: at(0), UpdatedAt: at(0),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Requests().Create(ctx, &model.ConnectionRequest{
		RequestID: uuid.New().String(), RequesterID: alice.UserID, RecipientID: bob.UserID,
		State: model.StatePending, CreatedAt: at(0), UpdatedAt: at(0),
	}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate directed pair: want ErrDuplicate, got %v", err)
	}
	cb, err := s.Requests().Create(ctx, &model.ConnectionRequest{
		RequestID: uuid.New().String(), RequesterID: carol.UserID, RecipientID: bob.UserID,
		State: model.StatePending, CreatedAt: at(time.Second), UpdatedAt: at(time.Second),
	})
	if err != nil {
		t.Fatalf("Create carol->bob: %v", err)
	}

	found, err := s.Requests().FindDirected(ctx, alice.UserID, bob.UserID)
	if err != nil || found.RequestID != ab.RequestID {
		t.Fatalf("FindDirected: got=%+v err=%v", found, err)
	}
	if _, err := s.Requests().FindDirected(ctx, bob.UserID, alice.UserID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("FindDirected reverse: want ErrNotFound, got %v", err)
	}

	incoming, err := s.Requests().ListIncomingPending(ctx, bob.UserID)
	if err != nil || len(incoming) != 2 || incoming[0].RequestID != cb.RequestID {
		t.Fatalf("ListIncomingPending should be newest first: %v err=%v", ids(incoming), err)
	}
	outgoing, err := s.Requests().ListOutgoingPending(ctx, alice.UserID)
	if err != nil || len(outgoing) != 1 {
		t.Fatalf("ListOutgoingPending: n=%d err=%v", len(outgoing), err)
	}

	updated, err := s.Requests().UpdateState(ctx, ab.RequestID, model.StateAccepted, at(time.Hour))
	if err != nil || updated.State != model.StateAccepted || !updated.UpdatedAt.Equal(at(time.Hour)) || !updated.CreatedAt.Equal(at(0)) {
		t.Fatalf("UpdateState: got=%+v err=%v", updated, err)
	}
	if _, err := s.Requests().UpdateState(ctx, "missing", model.StateAccepted, base); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("UpdateState missing: want ErrNotFound, got %v", err)
	}

	for _, who := range []string{alice.UserID, bob.UserID} {
		acc, err := s.Requests().ListAccepted(ctx, who)
		if err != nil || len(acc) != 1 || acc[0].RequestID != ab.RequestID {
			t.Fatalf("ListAccepted(%s): %v err=%v", who, ids(acc), err)
		}
	}
	if incoming, _ := s.Requests().ListIncomingPending(ctx, bob.UserID); len(incoming) != 1 {
		t.Fatalf("accepted request must leave the pending list, got %d", len(incoming))
	}

	between, err := s.Requests().ListBetween(ctx, bob.UserID, alice.UserID)
	if err != nil || len(between) != 1 {
		t.Fatalf("ListBetween: n=%d err=%v", len(between), err)
	}
}

func testConversations(t *testing.T, s store.DB) {
	ctx := context.Background()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")
	carol := newUser(t, s, "carol")

	c1, err := s.Conversations().Create(ctx, &model.Conversation{
		ConversationID: uuid.New().String(), Participants: []string{bob.UserID, alice.UserID},
		CreatedAt: at(0), UpdatedAt: at(0),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(c1.Participants) != 2 || !c1.HasParticipant(alice.UserID) {
		t.Fatalf("participants not kept: %v", c1.Participants)
	}
	if _, err := s.Conversations().Create(ctx, &model.Conversation{
		ConversationID: uuid.New().String(), Participants: []string{alice.UserID, bob.UserID},
		CreatedAt: at(0), UpdatedAt: at(0),
	}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("same participant set: want ErrDuplicate, got %v", err)
	}
	c2, err := s.Conversations().Create(ctx, &model.Conversation{
		ConversationID: uuid.New().String(), Participants: []string{alice.UserID, carol.UserID},
		CreatedAt: at(time.Second), UpdatedAt: at(time.Second),
	})
	if err != nil {
		t.Fatalf("Create c2: %v", err)
	}

	found, err := s.Conversations().FindByParticipants(ctx, model.ParticipantKey([]string{alice.UserID, bob.UserID}))
	if err != nil || found.ConversationID != c1.ConversationID {
		t.Fatalf("FindByParticipants: got=%+v err=%v", found, err)
	}

	if err := s.Conversations().Touch(ctx, c1.ConversationID, at(time.Minute)); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := s.Conversations().Touch(ctx, "missing", base); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Touch missing: want ErrNotFound, got %v", err)
	}

	list, err := s.Conversations().ListFor(ctx, alice.UserID)
	if err != nil || len(list) != 2 || list[0].ConversationID != c1.ConversationID || list[1].ConversationID != c2.ConversationID {
		t.Fatalf("ListFor should order by last activity: err=%v", err)
	}
	if list, _ := s.Conversations().ListFor(ctx, carol.UserID); len(list) != 1 {
		t.Fatalf("ListFor carol: want 1, got %d", len(list))
	}
}

func testMessages(t *testing.T, s store.DB) {
	ctx := context.Background()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")
	conv, err := s.Conversations().Create(ctx, &model.Conversation{
		ConversationID: uuid.New().String(), Participants: []string{alice.UserID, bob.UserID},
		CreatedAt: base, UpdatedAt: base,
	})
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	if _, ok, err := s.Messages().LastSentAt(ctx, conv.ConversationID); err != nil || ok {
		t.Fatalf("LastSentAt on empty conversation: ok=%v err=%v", ok, err)
	}

	var sent []*model.Message
	for i := 0; i < 3; i++ {
		m, err := s.Messages().Create(ctx, &model.Message{
			MessageID: uuid.New().String(), ConversationID: conv.ConversationID, SenderID: alice.UserID,
			Body: "hello", SentAt: at(time.Duration(i) * time.Microsecond),
		})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		sent = append(sent, m)
	}
	if _, err := s.Messages().Create(ctx, &model.Message{
		MessageID: uuid.New().String(), ConversationID: conv.ConversationID, SenderID: bob.UserID,
		Body: "same instant", SentAt: at(0),
	}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate sent_at in a conversation: want ErrDuplicate, got %v", err)
	}

	last, ok, err := s.Messages().LastSentAt(ctx, conv.ConversationID)
	if err != nil || !ok || !last.Equal(at(2*time.Microsecond)) {
		t.Fatalf("LastSentAt: %s ok=%v err=%v", last, ok, err)
	}

	all, err := s.Messages().List(ctx, conv.ConversationID, model.MessagePage{Limit: 10})
	if err != nil || len(all) != 3 {
		t.Fatalf("List: n=%d err=%v", len(all), err)
	}
	for i := range all {
		if all[i].MessageID != sent[i].MessageID {
			t.Fatalf("List must be oldest first")
		}
	}
	after := all[0].SentAt
	rest, err := s.Messages().List(ctx, conv.ConversationID, model.MessagePage{After: &after, Limit: 10})
	if err != nil || len(rest) != 2 || rest[0].MessageID != sent[1].MessageID {
		t.Fatalf("List after cursor: n=%d err=%v", len(rest), err)
	}
	if page, _ := s.Messages().List(ctx, conv.ConversationID, model.MessagePage{Limit: 1}); len(page) != 1 {
		t.Fatalf("List limit: want 1, got %d", len(page))
	}

	readAt := at(time.Hour)
	changed, err := s.Messages().MarkRead(ctx, sent[0].MessageID, readAt)
	if err != nil || !changed {
		t.Fatalf("MarkRead: changed=%v err=%v", changed, err)
	}
	changed, err = s.Messages().MarkRead(ctx, sent[0].MessageID, at(2*time.Hour))
	if err != nil || changed {
		t.Fatalf("second MarkRead must not change read_at: changed=%v err=%v", changed, err)
	}
	got, err := s.Messages().Get(ctx, sent[0].MessageID)
	if err != nil || got.ReadAt == nil || !got.ReadAt.Equal(readAt) {
		t.Fatalf("Get after MarkRead: got=%+v err=%v", got, err)
	}
	if _, err := s.Messages().Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}
}

func testBanking(t *testing.T, s store.DB) {
	ctx := context.Background()

	r1, err := s.Banking().Put(ctx, &model.BankingDetails{BankName: "First", AccountName: "Platform", AccountNumber: "1", IsActive: true}, at(0))
	if err != nil || r1.ID == "" || !r1.CreatedAt.Equal(at(0)) {
		t.Fatalf("Put insert: got=%+v err=%v", r1, err)
	}
	r2, err := s.Banking().Put(ctx, &model.BankingDetails{BankName: "Second", AccountName: "Platform", AccountNumber: "2", IsActive: true}, at(time.Second))
	if err != nil {
		t.Fatalf("Put second: %v", err)
	}

	active, err := s.Banking().ListActive(ctx)
	if err != nil || len(active) != 2 || active[0].ID != r2.ID {
		t.Fatalf("ListActive should return every active record newest first: n=%d err=%v", len(active), err)
	}

	demoted, err := s.Banking().DemoteActive(ctx, r2.ID, at(time.Minute))
	if err != nil || len(demoted) != 1 || demoted[0] != r1.ID {
		t.Fatalf("DemoteActive: %v err=%v", demoted, err)
	}
	got, err := s.Banking().Get(ctx, r1.ID)
	if err != nil || got.IsActive || !got.UpdatedAt.Equal(at(time.Minute)) {
		t.Fatalf("demoted record: got=%+v err=%v", got, err)
	}

	upd := *r2
	upd.BankName = "Second Renamed"
	out, err := s.Banking().Put(ctx, &upd, at(time.Hour))
	if err != nil || out.BankName != "Second Renamed" || !out.CreatedAt.Equal(at(time.Second)) || !out.UpdatedAt.Equal(at(time.Hour)) {
		t.Fatalf("Put update must keep created_at: got=%+v err=%v", out, err)
	}

	all, err := s.Banking().List(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("List: n=%d err=%v", len(all), err)
	}
	if _, err := s.Banking().Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}
}

func testPosts(t *testing.T, s store.DB) {
	ctx := context.Background()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")

	for i, author := range []string{alice.UserID, bob.UserID, alice.UserID} {
		if _, err := s.Posts().Create(ctx, &model.Post{
			PostID: uuid.New().String(), AuthorID: author, Content: "post",
			CreatedAt: at(time.Duration(i) * time.Second), UpdatedAt: at(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("Create post %d: %v", i, err)
		}
	}

	all, err := s.Posts().List(ctx, nil, 10)
	if err != nil || len(all) != 3 || !all[0].CreatedAt.Equal(at(2*time.Second)) {
		t.Fatalf("List all newest first: n=%d err=%v", len(all), err)
	}
	mine, err := s.Posts().List(ctx, []string{alice.UserID}, 10)
	if err != nil || len(mine) != 2 {
		t.Fatalf("List by author: n=%d err=%v", len(mine), err)
	}
	none, err := s.Posts().List(ctx, []string{}, 10)
	if err != nil || len(none) != 0 {
		t.Fatalf("List with empty author filter: n=%d err=%v", len(none), err)
	}
}

func testNotifications(t *testing.T, s store.DB) {
	ctx := context.Background()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")

	n, err := s.Notifications().Create(ctx, &model.Notification{
		NotificationID: uuid.New().String(), RecipientID: bob.UserID, Type: model.NotificationConnectionRequest,
		ActorID: alice.UserID, RequestID: "r1", CreatedAt: base,
	})
	if err != nil || n.ReadAt != nil {
		t.Fatalf("Create: got=%+v err=%v", n, err)
	}
	list, err := s.Notifications().List(ctx, bob.UserID, 10)
	if err != nil || len(list) != 1 || list[0].Type != model.NotificationConnectionRequest {
		t.Fatalf("List: n=%d err=%v", len(list), err)
	}
	if err := s.Notifications().MarkRead(ctx, n.NotificationID, at(time.Minute)); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := s.Notifications().MarkRead(ctx, n.NotificationID, at(time.Hour)); err != nil {
		t.Fatalf("MarkRead again: %v", err)
	}
	got, err := s.Notifications().Get(ctx, n.NotificationID)
	if err != nil || got.ReadAt == nil || !got.ReadAt.Equal(at(time.Minute)) {
		t.Fatalf("read_at must keep the first value: got=%+v err=%v", got, err)
	}
}

func testTransactions(t *testing.T, s store.DB) {
	ctx := context.Background()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx store.Tx) error {
		if err := tx.LockPair(ctx, alice.UserID, bob.UserID); err != nil {
			return err
		}
		if _, err := tx.Requests().Create(ctx, &model.ConnectionRequest{
			RequestID: uuid.New().String(), RequesterID: alice.UserID, RecipientID: bob.UserID,
			State: model.StatePending, CreatedAt: base, UpdatedAt: base,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx should return fn error, got %v", err)
	}
	if _, err := s.Requests().FindDirected(ctx, alice.UserID, bob.UserID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("rolled back insert must not be visible, got %v", err)
	}

	err = s.InTx(ctx, func(tx store.Tx) error {
		if err := tx.LockCollection(ctx, "banking_details"); err != nil {
			return err
		}
		_, err := tx.Banking().Put(ctx, &model.BankingDetails{BankName: "B", AccountName: "A", AccountNumber: "1"}, base)
		return err
	})
	if err != nil {
		t.Fatalf("InTx commit: %v", err)
	}
	if all, _ := s.Banking().List(ctx); len(all) != 1 {
		t.Fatalf("committed insert must be visible, got %d", len(all))
	}

	err = s.InTx(ctx, func(tx store.Tx) error {
		return tx.LockConversation(ctx, "missing")
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("LockConversation missing: want ErrNotFound, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := s.InTx(cancelled, func(tx store.Tx) error { return nil }); err == nil {
		t.Fatalf("InTx with cancelled context should fail")
	}
}

func ids(rs []*model.ConnectionRequest) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.RequestID
	}
	return out
}
