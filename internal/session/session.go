// Package session implements the binding between a transport-level
// connection and a logged-in user (spec §4.3). It is deliberately separate
// from internal/store: the store holds durable account state, the registry
// holds ephemeral online/offline state that vanishes on process restart.
package session

import (
	"sync"

	"github.com/brnhrs/warhorse-server/internal/store"
)

// ID identifies a single transport connection. The transport layer mints
// these (one per accepted websocket) and never reuses one across
// reconnects.
type ID string

// Registry is the process-wide session<->user binding described in
// spec §4.3. A coarse mutex is sufficient: binds/unbinds are rare compared
// to message traffic, and every exported method does O(1) map work under
// the lock.
type Registry struct {
	mu        sync.Mutex
	byUser    map[store.UserID]ID
	bySession map[ID]store.UserID
}

// NewRegistry constructs an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser:    make(map[store.UserID]ID),
		bySession: make(map[ID]store.UserID),
	}
}

// Bind associates session with user, displacing any session that user was
// previously bound to (relogin resolution, spec §9 Open Question 1: the
// newer session wins and the older one is left to discover it was
// displaced the next time it tries to send). It returns the displaced
// session ID, if any.
func (r *Registry) Bind(session ID, user store.UserID) (displaced ID, hadPrevious bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byUser[user]; ok && prev != session {
		delete(r.bySession, prev)
		displaced, hadPrevious = prev, true
	}

	// A session can only ever be bound to one user; if this session id
	// was previously bound to someone else (should not happen in
	// practice, the transport mints a fresh ID per connection) drop that
	// stale mapping first.
	if prevUser, ok := r.bySession[session]; ok && prevUser != user {
		delete(r.byUser, prevUser)
	}

	r.byUser[user] = session
	r.bySession[session] = user
	return displaced, hadPrevious
}

// UnbindBySession removes the binding for session, if any, and reports the
// user it was bound to.
func (r *Registry) UnbindBySession(session ID) (store.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.bySession[session]
	if !ok {
		return "", false
	}
	delete(r.bySession, session)
	if r.byUser[user] == session {
		delete(r.byUser, user)
	}
	return user, true
}

// SessionOf returns the session currently bound to user, if online.
func (r *Registry) SessionOf(user store.UserID) (ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byUser[user]
	return s, ok
}

// UserOf returns the user currently bound to session, if logged in.
func (r *Registry) UserOf(session ID) (store.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.bySession[session]
	return u, ok
}

// IsOnline reports whether user currently has a bound session.
func (r *Registry) IsOnline(user store.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byUser[user]
	return ok
}

// OnlineCount returns the number of distinct logged-in users. Mostly useful
// for tests and health diagnostics.
func (r *Registry) OnlineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}
