package chat

import (
	"testing"

	"github.com/brnhrs/warhorse-server/internal/i18n"
	"github.com/brnhrs/warhorse-server/internal/session"
	"github.com/brnhrs/warhorse-server/internal/store"
	"github.com/brnhrs/warhorse-server/internal/store/memory"
)

func setup(t *testing.T) (*Router, *memory.Store, *session.Registry) {
	t.Helper()
	st := memory.New()
	sessions := session.NewRegistry()
	return NewRouter(st, sessions, "general"), st, sessions
}

func newUser(t *testing.T, st *memory.Store, name string) store.UserID {
	t.Helper()
	return st.UsersInsert(store.Registration{AccountName: name, DisplayName: name, Email: name + "@x.io", PasswordHash: "h"})
}

func TestWhisperRequiresFriendship(t *testing.T) {
	r, st, sessions := setup(t)
	alice := newUser(t, st, "alice")
	bob := newUser(t, st, "bob")
	sessions.Bind("bob-sess", bob)

	if _, err := r.SendChatMessage(alice, PrivateChannel(bob), "hi", i18n.English, 100); err == nil || err.Kind != i18n.NotFriends {
		t.Fatalf("expected NotFriends, got %v", err)
	}

	st.FriendsAdd(alice, bob)
	st.FriendsAdd(bob, alice)

	plan, err := r.SendChatMessage(alice, PrivateChannel(bob), "hi", i18n.English, 100)
	if err != nil {
		t.Fatalf("SendChatMessage: %v", err)
	}
	if len(plan) != 1 || plan[0].Session != "bob-sess" || plan[0].Message.Text != "hi" {
		t.Fatalf("unexpected delivery plan: %+v", plan)
	}
}

func TestWhisperBlockedRejectsEitherDirection(t *testing.T) {
	r, st, sessions := setup(t)
	alice := newUser(t, st, "alice")
	bob := newUser(t, st, "bob")
	sessions.Bind("bob-sess", bob)
	st.FriendsAdd(alice, bob)
	st.FriendsAdd(bob, alice)
	st.BlocksInsert(bob, alice)

	if _, err := r.SendChatMessage(alice, PrivateChannel(bob), "hi", i18n.English, 100); err == nil || err.Kind != i18n.UserBlocked {
		t.Fatalf("expected UserBlocked, got %v", err)
	}

	st.BlocksRemove(bob, alice)
	st.BlocksInsert(alice, bob)

	if _, err := r.SendChatMessage(alice, PrivateChannel(bob), "hi", i18n.English, 100); err == nil || err.Kind != i18n.UserBlocked {
		t.Fatalf("expected UserBlocked when the sender blocked the recipient, got %v", err)
	}
}

func TestWhisperToOfflineFriendDeliversNothingNoError(t *testing.T) {
	r, st, _ := setup(t)
	alice := newUser(t, st, "alice")
	bob := newUser(t, st, "bob")
	st.FriendsAdd(alice, bob)
	st.FriendsAdd(bob, alice)

	plan, err := r.SendChatMessage(alice, PrivateChannel(bob), "hi", i18n.English, 100)
	if err != nil {
		t.Fatalf("expected no error for offline recipient, got %v", err)
	}
	if len(plan) != 0 {
		t.Fatalf("expected empty delivery plan, got %+v", plan)
	}
}

func TestRoomBroadcastReachesAllMembersIncludingSender(t *testing.T) {
	r, st, sessions := setup(t)
	alice := newUser(t, st, "alice")
	carol := newUser(t, st, "carol")
	sessions.Bind("alice-sess", alice)
	sessions.Bind("carol-sess", carol)
	r.JoinGeneral("alice-sess")
	r.JoinGeneral("carol-sess")

	plan, err := r.SendChatMessage(alice, RoomChannel("general"), "hello", i18n.English, 100)
	if err != nil {
		t.Fatalf("SendChatMessage: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected broadcast to both sessions, got %+v", plan)
	}

	seen := map[session.ID]bool{}
	for _, d := range plan {
		seen[d.Session] = true
	}
	if !seen["alice-sess"] || !seen["carol-sess"] {
		t.Fatalf("expected both alice-sess and carol-sess to receive the message: %+v", plan)
	}
}

func TestRoomRequiresMembership(t *testing.T) {
	r, st, sessions := setup(t)
	alice := newUser(t, st, "alice")
	sessions.Bind("alice-sess", alice)
	// alice never joins "general".

	if _, err := r.SendChatMessage(alice, RoomChannel("general"), "hello", i18n.English, 100); err == nil || err.Kind != i18n.NotInRoom {
		t.Fatalf("expected NotInRoom, got %v", err)
	}
}

func TestLeaveRemovesFromAllRooms(t *testing.T) {
	r, st, sessions := setup(t)
	alice := newUser(t, st, "alice")
	sessions.Bind("alice-sess", alice)
	r.JoinGeneral("alice-sess")
	r.Leave("alice-sess")

	if r.IsMember("alice-sess", "general") {
		t.Fatalf("expected alice-sess to have left general")
	}
}
