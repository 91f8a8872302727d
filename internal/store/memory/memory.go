// Package memory is the in-memory reference implementation of store.Store.
// It is the test double spec.md describes: a coarse mutex over plain maps,
// ported from the original Rust InMemoryDatabase (db_in_memory.rs) — same
// shape (id-keyed users map, adjacency-list friendships/requests, a block
// pair list), rewritten against Go's map/slice idiom.
package memory

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brnhrs/warhorse-server/internal/store"
)

type pair struct {
	a, b store.UserID
}

// Store is a mutex-guarded in-memory implementation of store.Store.
type Store struct {
	mu sync.Mutex

	users      map[store.UserID]store.User
	byAccount  map[string]store.UserID // account_name_lower -> id
	byEmail    map[string]store.UserID // email (already lowercase) -> id
	friends    map[store.UserID]map[store.UserID]struct{}
	requests   map[pair]struct{} // (from, to)
	blocks     map[pair]struct{} // (blocker, blocked)
	nextUserID int64
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		users:     make(map[store.UserID]store.User),
		byAccount: make(map[string]store.UserID),
		byEmail:   make(map[string]store.UserID),
		friends:   make(map[store.UserID]map[store.UserID]struct{}),
		requests:  make(map[pair]struct{}),
		blocks:    make(map[pair]struct{}),
	}
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

func (s *Store) UserExists(id store.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[id]
	return ok
}

func (s *Store) UsersInsert(reg store.Registration) store.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := store.UserID(strconv.FormatInt(s.nextUserID, 10))
	s.nextUserID++

	accountLower := strings.ToLower(reg.AccountName)
	emailLower := strings.ToLower(reg.Email)

	u := store.User{
		ID:               id,
		AccountName:      reg.AccountName,
		AccountNameLower: accountLower,
		DisplayName:      reg.DisplayName,
		DisplayNameLower: strings.ToLower(reg.DisplayName),
		Email:            emailLower,
		Language:         reg.Language,
		PasswordHash:     reg.PasswordHash,
		CreatedAt:        time.Now(),
	}
	s.users[id] = u
	s.byAccount[accountLower] = id
	s.byEmail[emailLower] = id
	return id
}

func (s *Store) UsersGet(id store.UserID) (store.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) UsersGetByAccountName(name string) (store.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byAccount[strings.ToLower(name)]
	if !ok {
		return store.User{}, false
	}
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) UsersGetByEmail(email string) (store.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return store.User{}, false
	}
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) FriendsAdd(a, b store.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addFriendLocked(a, b)
}

func (s *Store) addFriendLocked(a, b store.UserID) {
	if s.friends[a] == nil {
		s.friends[a] = make(map[store.UserID]struct{})
	}
	s.friends[a][b] = struct{}{}
}

func (s *Store) FriendsRemove(a, b store.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.friends[a]; ok {
		delete(m, b)
	}
}

func (s *Store) FriendsGet(user store.UserID) []store.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.UserID, 0, len(s.friends[user]))
	for id := range s.friends[user] {
		out = append(out, id)
	}
	return out
}

func (s *Store) FriendRequestsInsert(from, to store.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[pair{from, to}] = struct{}{}
}

func (s *Store) FriendRequestsRemove(from, to store.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, pair{from, to})
}

func (s *Store) FriendRequestExists(from, to store.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.requests[pair{from, to}]
	return ok
}

func (s *Store) FriendRequestsIncoming(user store.UserID) []store.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.UserID
	for p := range s.requests {
		if p.b == user {
			out = append(out, p.a)
		}
	}
	return out
}

func (s *Store) FriendRequestsOutgoing(user store.UserID) []store.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.UserID
	for p := range s.requests {
		if p.a == user {
			out = append(out, p.b)
		}
	}
	return out
}

func (s *Store) BlocksInsert(blocker, blocked store.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[pair{blocker, blocked}] = struct{}{}
}

func (s *Store) BlocksRemove(blocker, blocked store.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blocks, pair{blocker, blocked})
}

func (s *Store) BlocksOutgoing(user store.UserID) []store.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.UserID
	for p := range s.blocks {
		if p.a == user {
			out = append(out, p.b)
		}
	}
	return out
}

func (s *Store) IsBlocked(blocker, blocked store.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blocks[pair{blocker, blocked}]
	return ok
}
