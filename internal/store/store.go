// Package store defines the durable state of the social graph: users,
// friendships, friend requests and blocks. Operations are synchronous and
// perform no suspension; the store knows nothing about sessions or
// notifications — that is the job of internal/session, internal/relationship
// and internal/chat.
package store

import "time"

// UserID identifies a registered account. Opaque to callers; the store
// assigns it at registration time.
type UserID string

// RoomID identifies a broadcast room. Free-form; "general" is the room
// every session auto-joins on bind.
type RoomID string

// Language selects the localized string table used by internal/i18n.
type Language int

const (
	English Language = iota
	Spanish
	French
)

// User is a registered account.
type User struct {
	ID               UserID
	AccountName      string
	AccountNameLower string
	DisplayName      string
	DisplayNameLower string
	Email            string
	Language         Language
	PasswordHash     string
	CreatedAt        time.Time
}

// Registration carries the fields needed to create a new User. The
// password is already hashed by the time it reaches the store.
type Registration struct {
	AccountName  string
	DisplayName  string
	Email        string
	PasswordHash string
	Language     Language
}

// Store is the durable-state interface described in spec §4.1. The
// in-memory implementation under internal/store/memory is the reference
// implementation and test double; internal/store/sqlite is a pluggable
// durable backend behind the same interface. Callers are responsible for
// symmetry: FriendsAdd/FriendsRemove must be invoked for both directions
// of a pair, the store itself does not enforce it.
type Store interface {
	UserExists(id UserID) bool
	UsersInsert(reg Registration) UserID
	UsersGet(id UserID) (User, bool)
	UsersGetByAccountName(name string) (User, bool)
	UsersGetByEmail(email string) (User, bool)

	FriendsAdd(a, b UserID)
	FriendsRemove(a, b UserID)
	FriendsGet(user UserID) []UserID

	FriendRequestsInsert(from, to UserID)
	FriendRequestsRemove(from, to UserID)
	FriendRequestExists(from, to UserID) bool
	FriendRequestsIncoming(user UserID) []UserID
	FriendRequestsOutgoing(user UserID) []UserID

	BlocksInsert(blocker, blocked UserID)
	BlocksRemove(blocker, blocked UserID)
	BlocksOutgoing(user UserID) []UserID
	IsBlocked(blocker, blocked UserID) bool

	// Close releases any resources held by the backend (file handles,
	// connection pools). The in-memory store's Close is a no-op.
	Close() error
}
