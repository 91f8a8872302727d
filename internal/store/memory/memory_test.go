package memory

import (
	"testing"

	"github.com/brnhrs/warhorse-server/internal/store"
)

func newUser(t *testing.T, s *Store, account, email string) store.UserID {
	t.Helper()
	return s.UsersInsert(store.Registration{
		AccountName:  account,
		DisplayName:  account,
		Email:        email,
		PasswordHash: "x",
	})
}

func TestUsersInsertAndLookup(t *testing.T) {
	s := New()
	id := newUser(t, s, "Alice", "alice@example.com")

	if !s.UserExists(id) {
		t.Fatalf("expected user to exist")
	}

	u, ok := s.UsersGetByAccountName("alice")
	if !ok || u.ID != id {
		t.Fatalf("case-insensitive account lookup failed: %+v ok=%v", u, ok)
	}

	u, ok = s.UsersGetByEmail("ALICE@example.com")
	if !ok || u.ID != id {
		t.Fatalf("case-insensitive email lookup failed: %+v ok=%v", u, ok)
	}
}

func TestFriendsSymmetryIsCallerManaged(t *testing.T) {
	s := New()
	a := newUser(t, s, "alice", "a@x.io")
	b := newUser(t, s, "bob", "b@x.io")

	s.FriendsAdd(a, b)
	if got := s.FriendsGet(a); len(got) != 1 || got[0] != b {
		t.Fatalf("expected a->b friendship, got %v", got)
	}
	if got := s.FriendsGet(b); len(got) != 0 {
		t.Fatalf("store must not synthesize the reverse edge, got %v", got)
	}

	s.FriendsAdd(b, a)
	if got := s.FriendsGet(b); len(got) != 1 || got[0] != a {
		t.Fatalf("expected b->a friendship, got %v", got)
	}

	s.FriendsRemove(a, b)
	s.FriendsRemove(b, a)
	if got := s.FriendsGet(a); len(got) != 0 {
		t.Fatalf("expected no friends after removal, got %v", got)
	}
}

func TestFriendRequestsIncomingOutgoing(t *testing.T) {
	s := New()
	a := newUser(t, s, "alice", "a@x.io")
	b := newUser(t, s, "bob", "b@x.io")

	s.FriendRequestsInsert(a, b)
	if !s.FriendRequestExists(a, b) {
		t.Fatalf("expected request a->b to exist")
	}
	if s.FriendRequestExists(b, a) {
		t.Fatalf("did not expect a reverse request")
	}

	incoming := s.FriendRequestsIncoming(b)
	if len(incoming) != 1 || incoming[0] != a {
		t.Fatalf("unexpected incoming requests for b: %v", incoming)
	}

	outgoing := s.FriendRequestsOutgoing(a)
	if len(outgoing) != 1 || outgoing[0] != b {
		t.Fatalf("unexpected outgoing requests for a: %v", outgoing)
	}

	s.FriendRequestsRemove(a, b)
	if s.FriendRequestExists(a, b) {
		t.Fatalf("expected request to be removed")
	}
}

func TestBlocks(t *testing.T) {
	s := New()
	a := newUser(t, s, "alice", "a@x.io")
	b := newUser(t, s, "bob", "b@x.io")

	s.BlocksInsert(a, b)
	if !s.IsBlocked(a, b) {
		t.Fatalf("expected a to have blocked b")
	}
	if s.IsBlocked(b, a) {
		t.Fatalf("block must be asymmetric")
	}
	if got := s.BlocksOutgoing(a); len(got) != 1 || got[0] != b {
		t.Fatalf("unexpected outgoing blocks: %v", got)
	}

	s.BlocksRemove(a, b)
	if s.IsBlocked(a, b) {
		t.Fatalf("expected block to be removed")
	}
}
