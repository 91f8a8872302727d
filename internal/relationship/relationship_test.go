package relationship

import (
	"testing"

	"github.com/brnhrs/warhorse-server/internal/i18n"
	"github.com/brnhrs/warhorse-server/internal/session"
	"github.com/brnhrs/warhorse-server/internal/store"
	"github.com/brnhrs/warhorse-server/internal/store/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store, *session.Registry) {
	t.Helper()
	st := memory.New()
	sessions := session.NewRegistry()
	return New(st, sessions, nil, nil), st, sessions
}

func register(t *testing.T, s *Service, account string) store.UserID {
	t.Helper()
	id, err := s.Register(RegisterRequest{
		AccountName: account,
		DisplayName: account,
		Email:       account + "@x.io",
		Password:    "password",
		Language:    i18n.English,
	})
	if err != nil {
		t.Fatalf("register %s: %v", account, err)
	}
	return id
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s, _, _ := newTestService(t)
	register(t, s, "alice")

	if _, err := s.Register(RegisterRequest{AccountName: "alice", DisplayName: "alice2", Email: "other@x.io", Password: "password", Language: i18n.English}); err == nil || err.Kind != i18n.AccountNameTaken {
		t.Fatalf("expected AccountNameTaken, got %v", err)
	}
	if _, err := s.Register(RegisterRequest{AccountName: "alice2", DisplayName: "alice2", Email: "alice@x.io", Password: "password", Language: i18n.English}); err == nil || err.Kind != i18n.EmailTaken {
		t.Fatalf("expected EmailTaken, got %v", err)
	}
}

func TestLoginStubAcceptsAnyPassword(t *testing.T) {
	s, _, _ := newTestService(t)
	id := register(t, s, "alice")

	got, err := s.Login(LoginIdentity{AccountName: "alice"}, "wrong-but-accepted", i18n.English)
	if err != nil || got != id {
		t.Fatalf("Login = %v, %v", got, err)
	}

	if _, err := s.Login(LoginIdentity{AccountName: "nobody"}, "x", i18n.English); err == nil || err.Kind != i18n.InvalidLogin {
		t.Fatalf("expected InvalidLogin, got %v", err)
	}
}

func TestSendFriendRequestThenAccept(t *testing.T) {
	s, _, _ := newTestService(t)
	alice := register(t, s, "alice")
	bob := register(t, s, "bob")

	plan, err := s.SendFriendRequest(alice, bob, i18n.English)
	if err != nil {
		t.Fatalf("SendFriendRequest: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 refresh entries, got %d", len(plan))
	}

	// Second identical request is an idempotent no-op.
	if plan2, err := s.SendFriendRequest(alice, bob, i18n.English); err != nil || plan2 != nil {
		t.Fatalf("expected idempotent no-op, got plan=%v err=%v", plan2, err)
	}

	plan, err = s.AcceptFriendRequest(bob, alice, i18n.English)
	if err != nil {
		t.Fatalf("AcceptFriendRequest: %v", err)
	}
	if plan[0].Accepted == nil || *plan[0].Accepted != alice {
		t.Fatalf("expected FriendRequestAccepted(friend=alice) for bob, got %+v", plan[0])
	}

	aliceFriends := s.FriendsView(alice)
	if len(aliceFriends) != 1 || aliceFriends[0].ID != bob || aliceFriends[0].Status != StatusOffline {
		t.Fatalf("unexpected friends view: %+v", aliceFriends)
	}
}

func TestCrossedFriendRequestsAutoAccept(t *testing.T) {
	s, _, _ := newTestService(t)
	alice := register(t, s, "alice")
	bob := register(t, s, "bob")

	if _, err := s.SendFriendRequest(alice, bob, i18n.English); err != nil {
		t.Fatalf("alice->bob: %v", err)
	}

	plan, err := s.SendFriendRequest(bob, alice, i18n.English)
	if err != nil {
		t.Fatalf("bob->alice: %v", err)
	}

	var bobEntry *RefreshEntry
	for i := range plan {
		if plan[i].User == bob {
			bobEntry = &plan[i]
		}
	}
	if bobEntry == nil || bobEntry.Accepted == nil || *bobEntry.Accepted != alice {
		t.Fatalf("expected bob to receive FriendRequestAccepted(friend=alice), got %+v", plan)
	}

	if s.store.FriendRequestExists(alice, bob) {
		t.Fatalf("expected original request to be resolved")
	}
}

func TestSendFriendRequestRejectsBlocked(t *testing.T) {
	s, _, _ := newTestService(t)
	alice := register(t, s, "alice")
	bob := register(t, s, "bob")

	if _, err := s.BlockUser(bob, alice, i18n.English); err != nil {
		t.Fatalf("BlockUser: %v", err)
	}
	if _, err := s.SendFriendRequest(alice, bob, i18n.English); err == nil || err.Kind != i18n.UserBlocked {
		t.Fatalf("expected UserBlocked, got %v", err)
	}
}

func TestBlockTearsDownFriendshipAndRequests(t *testing.T) {
	s, _, _ := newTestService(t)
	alice := register(t, s, "alice")
	bob := register(t, s, "bob")

	if _, err := s.SendFriendRequest(alice, bob, i18n.English); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AcceptFriendRequest(bob, alice, i18n.English); err != nil {
		t.Fatal(err)
	}

	if _, err := s.BlockUser(bob, alice, i18n.English); err != nil {
		t.Fatalf("BlockUser: %v", err)
	}

	if len(s.FriendsView(bob)) != 1 || s.FriendsView(bob)[0].Status != StatusBlocked {
		t.Fatalf("expected bob to see alice as Blocked, got %+v", s.FriendsView(bob))
	}
	if len(s.FriendsView(alice)) != 0 {
		t.Fatalf("expected alice's friend list to no longer include bob, got %+v", s.FriendsView(alice))
	}
}

func TestSelfTargetedFriendRequestIsSilentlyIgnored(t *testing.T) {
	s, _, _ := newTestService(t)
	alice := register(t, s, "alice")

	plan, err := s.SendFriendRequest(alice, alice, i18n.English)
	if err != nil || plan != nil {
		t.Fatalf("expected silent no-op, got plan=%v err=%v", plan, err)
	}
}
