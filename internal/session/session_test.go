package session

import "testing"

func TestBindAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Bind("sess-1", "user-1")

	if s, ok := r.SessionOf("user-1"); !ok || s != "sess-1" {
		t.Fatalf("SessionOf = %v, %v", s, ok)
	}
	if u, ok := r.UserOf("sess-1"); !ok || u != "user-1" {
		t.Fatalf("UserOf = %v, %v", u, ok)
	}
	if !r.IsOnline("user-1") {
		t.Fatalf("expected user-1 to be online")
	}
}

func TestBindDisplacesPreviousSession(t *testing.T) {
	r := NewRegistry()
	r.Bind("sess-1", "user-1")

	displaced, had := r.Bind("sess-2", "user-1")
	if !had || displaced != "sess-1" {
		t.Fatalf("expected sess-1 to be displaced, got %v %v", displaced, had)
	}

	if _, ok := r.UserOf("sess-1"); ok {
		t.Fatalf("expected sess-1 to no longer be bound")
	}
	if s, ok := r.SessionOf("user-1"); !ok || s != "sess-2" {
		t.Fatalf("expected user-1 bound to sess-2, got %v %v", s, ok)
	}
}

func TestUnbindBySession(t *testing.T) {
	r := NewRegistry()
	r.Bind("sess-1", "user-1")

	user, ok := r.UnbindBySession("sess-1")
	if !ok || user != "user-1" {
		t.Fatalf("UnbindBySession = %v, %v", user, ok)
	}
	if r.IsOnline("user-1") {
		t.Fatalf("expected user-1 to be offline after unbind")
	}
	if _, ok := r.UnbindBySession("sess-1"); ok {
		t.Fatalf("expected second unbind to be a no-op")
	}
}

func TestUnbindStaleSessionDoesNotClobberNewBinding(t *testing.T) {
	r := NewRegistry()
	r.Bind("sess-1", "user-1")
	r.Bind("sess-2", "user-1") // displaces sess-1

	// sess-1's connection finally notices it was displaced and tears down;
	// it must not evict user-1's current binding to sess-2.
	if _, ok := r.UnbindBySession("sess-1"); ok {
		t.Fatalf("sess-1 should already be unbound")
	}
	if s, ok := r.SessionOf("user-1"); !ok || s != "sess-2" {
		t.Fatalf("expected user-1 still bound to sess-2, got %v %v", s, ok)
	}
}
