package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/brnhrs/warhorse-server/internal/chat"
	"github.com/brnhrs/warhorse-server/internal/i18n"
	"github.com/brnhrs/warhorse-server/internal/relationship"
	"github.com/brnhrs/warhorse-server/internal/session"
	"github.com/brnhrs/warhorse-server/internal/store/memory"
)

func newTestHub(t *testing.T) (*Hub, context.Context) {
	t.Helper()
	st := memory.New()
	sessions := session.NewRegistry()
	rel := relationship.New(st, sessions, nil, nil)
	router := chat.NewRouter(st, sessions, "general")
	hub := NewHub(st, sessions, rel, router, "general", zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub, ctx
}

func registerClient(t *testing.T, hub *Hub, sess session.ID, account string) *Client {
	t.Helper()
	c := NewClient(sess)
	hub.RegisterClient(c)
	mustEvent(t, c.Events, EventHello)

	c.Commands <- &Command{
		Kind: CommandRegister,
		Register: relationship.RegisterRequest{
			AccountName: account,
			DisplayName: account,
			Email:       account + "@x.io",
			Password:    "password",
			Language:    i18n.English,
		},
	}
	mustEvent(t, c.Events, EventLoginOK)
	mustEvent(t, c.Events, EventFriendRequests)
	mustEvent(t, c.Events, EventFriends)
	return c
}

func TestRegisterThenEmptyFriendsView(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := registerClient(t, hub, "alice-sess", "alice")
	_ = alice

	aliceID, ok := hub.sessions.UserOf("alice-sess")
	if !ok {
		t.Fatal("alice not bound")
	}
	if friends := hub.rel.FriendsView(aliceID); len(friends) != 0 {
		t.Fatalf("expected empty friends view after register, got %+v", friends)
	}
}

func TestFriendRequestAndAccept(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := registerClient(t, hub, "alice-sess", "alice")
	bob := registerClient(t, hub, "bob-sess", "bob")

	aliceID, ok := hub.sessions.UserOf("alice-sess")
	if !ok {
		t.Fatal("alice not bound")
	}
	bobID, ok := hub.sessions.UserOf("bob-sess")
	if !ok {
		t.Fatal("bob not bound")
	}

	alice.Commands <- &Command{Kind: CommandSendFriendRequest, TargetUser: bobID, Language: i18n.English}

	reqEv := mustEvent(t, bob.Events, EventFriendRequests)
	if len(reqEv.FriendRequests) != 1 || reqEv.FriendRequests[0].ID != aliceID {
		t.Fatalf("expected bob to see alice's incoming request, got %+v", reqEv)
	}
	mustEvent(t, bob.Events, EventFriends)
	mustEvent(t, alice.Events, EventFriends)

	bob.Commands <- &Command{Kind: CommandAcceptFriendRequest, TargetUser: aliceID, Language: i18n.English}

	acceptedEv := mustEvent(t, bob.Events, EventFriendRequestAccepted)
	if acceptedEv.Accepted == nil || acceptedEv.Accepted.ID != aliceID {
		t.Fatalf("expected bob to be notified of accepted friend alice, got %+v", acceptedEv)
	}
	mustEvent(t, bob.Events, EventFriends)
	mustEvent(t, alice.Events, EventFriends)
}

func TestWhisperBetweenFriends(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := registerClient(t, hub, "alice-sess", "alice")
	bob := registerClient(t, hub, "bob-sess", "bob")

	aliceID, _ := hub.sessions.UserOf("alice-sess")
	bobID, _ := hub.sessions.UserOf("bob-sess")

	alice.Commands <- &Command{Kind: CommandSendFriendRequest, TargetUser: bobID, Language: i18n.English}
	mustEvent(t, bob.Events, EventFriendRequests)
	mustEvent(t, bob.Events, EventFriends)
	mustEvent(t, alice.Events, EventFriends)

	bob.Commands <- &Command{Kind: CommandAcceptFriendRequest, TargetUser: aliceID, Language: i18n.English}
	mustEvent(t, bob.Events, EventFriendRequestAccepted)
	mustEvent(t, bob.Events, EventFriends)
	mustEvent(t, alice.Events, EventFriends)

	alice.Commands <- &Command{
		Kind:     CommandSendChatMessage,
		Channel:  chat.PrivateChannel(bobID),
		Text:     "hi bob",
		Language: i18n.English,
	}

	msgEv := mustEvent(t, bob.Events, EventChatMessage)
	if msgEv.Chat == nil || msgEv.Chat.Text != "hi bob" || msgEv.Chat.DisplayName != "alice" {
		t.Fatalf("unexpected chat event: %+v", msgEv)
	}
}

func TestRoomBroadcastToBothMembers(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := registerClient(t, hub, "alice-sess", "alice")
	carol := registerClient(t, hub, "carol-sess", "carol")

	alice.Commands <- &Command{
		Kind:     CommandSendChatMessage,
		Channel:  chat.RoomChannel("general"),
		Text:     "hello room",
		Language: i18n.English,
	}

	aliceEv := mustEvent(t, alice.Events, EventChatMessage)
	if aliceEv.Chat.Text != "hello room" {
		t.Fatalf("expected sender to receive its own broadcast, got %+v", aliceEv)
	}
	carolEv := mustEvent(t, carol.Events, EventChatMessage)
	if carolEv.Chat.Text != "hello room" {
		t.Fatalf("unexpected room message for carol: %+v", carolEv)
	}
}

func TestSecondLoginDisplacesFirstSession(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := registerClient(t, hub, "alice-sess-1", "alice")

	alice2 := NewClient("alice-sess-2")
	hub.RegisterClient(alice2)
	mustEvent(t, alice2.Events, EventHello)

	alice2.Commands <- &Command{
		Kind:     CommandLogin,
		Identity: relationship.LoginIdentity{AccountName: "alice"},
		Password: "password",
		Language: i18n.English,
	}
	mustEvent(t, alice2.Events, EventLoginOK)

	aliceID, _ := hub.sessions.UserOf("alice-sess-2")
	if sess, ok := hub.sessions.SessionOf(aliceID); !ok || sess != "alice-sess-2" {
		t.Fatalf("expected alice bound to the newer session, got %v %v", sess, ok)
	}
	if _, ok := hub.sessions.UserOf("alice-sess-1"); ok {
		t.Fatalf("expected the first session to be displaced")
	}
	_ = alice
}
