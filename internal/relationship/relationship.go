// Package relationship implements the commands that mutate the friendship
// graph (spec §4.4): registration, login, friend requests, blocks, and the
// FriendStatus projections derived from the combination of Store and
// session.Registry state. Grounded on the original Rust server's
// send_friend_request/accept_friend_request/block_user family in
// server.rs, reshaped around an explicit RefreshPlan return value instead
// of the original's inline socket emits.
package relationship

import (
	"sort"

	"github.com/brnhrs/warhorse-server/internal/i18n"
	"github.com/brnhrs/warhorse-server/internal/session"
	"github.com/brnhrs/warhorse-server/internal/store"
)

// FriendStatus is the derived per-viewer status of another user (spec §3).
type FriendStatus int

const (
	StatusOffline FriendStatus = iota
	StatusOnline
	StatusFriendRequestSent
	StatusFriendRequestReceived
	StatusBlocked
)

// Friend is one row of a Friends or FriendRequests view.
type Friend struct {
	ID          store.UserID
	DisplayName string
	Status      FriendStatus
}

// RefreshEntry names one user and the views the dispatcher must re-send
// to it; it does not carry data, the dispatcher recomputes each view at
// emit time so it reflects the very latest state.
type RefreshEntry struct {
	User           store.UserID
	Accepted       *store.UserID // non-nil: send FriendRequestAccepted(friend=*Accepted) first
	FriendRequests bool          // then FriendRequests, if set
	Friends        bool          // then Friends, if set
}

// RefreshPlan is the set of (user, views) pairs a command declares as
// needing re-transmission (spec §4.4). Entries are already in the
// emission order required by spec §5: Accepted, then FriendRequests, then
// Friends, per entry.
type RefreshPlan []RefreshEntry

// PasswordHasher turns a cleartext password into a storable hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// PasswordVerifier checks a cleartext password against a stored hash.
type PasswordVerifier interface {
	Verify(hash, password string) bool
}

// stubHasher/stubVerifier implement the reference behavior described in
// spec §9 Open Question 5: authentication is a stub that accepts any
// password for an existing account. Production deployments wire
// internal/auth's bcrypt-backed implementations instead.
type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return password, nil }

type stubVerifier struct{}

func (stubVerifier) Verify(hash, password string) bool { return true }

// RegisterRequest carries the fields of a /user/register command.
type RegisterRequest struct {
	AccountName string
	DisplayName string
	Email       string
	Password    string
	Language    i18n.Language
}

// LoginIdentity is the tagged union of /user/login's identity field.
// Exactly one of AccountName/Email should be set.
type LoginIdentity struct {
	AccountName string
	Email       string
}

// Service implements the Relationship Service of spec §4.4.
type Service struct {
	store    store.Store
	sessions *session.Registry
	hasher   PasswordHasher
	verifier PasswordVerifier
}

// New constructs a relationship Service. Pass nil for hasher/verifier to
// use the reference stub behavior (any password accepted); internal/auth
// supplies bcrypt-backed implementations when Config.RequireHashedPassword
// is set.
func New(st store.Store, sessions *session.Registry, hasher PasswordHasher, verifier PasswordVerifier) *Service {
	if hasher == nil {
		hasher = stubHasher{}
	}
	if verifier == nil {
		verifier = stubVerifier{}
	}
	return &Service{store: st, sessions: sessions, hasher: hasher, verifier: verifier}
}

func (s *Service) areFriends(a, b store.UserID) bool {
	for _, f := range s.store.FriendsGet(a) {
		if f == b {
			return true
		}
	}
	return false
}

// Register validates req, fails on duplicate account name/email, and
// inserts the user. It returns no RefreshPlan: the caller binds the new
// session itself.
func (s *Service) Register(req RegisterRequest) (store.UserID, *i18n.Error) {
	if err := i18n.ValidateAccountName(req.AccountName, req.Language); err != nil {
		return "", err
	}
	if err := i18n.ValidateDisplayName(req.DisplayName, req.Language); err != nil {
		return "", err
	}
	if err := i18n.ValidateEmail(req.Email, req.Language); err != nil {
		return "", err
	}
	if err := i18n.ValidatePassword(req.Password, req.Language); err != nil {
		return "", err
	}
	if _, ok := s.store.UsersGetByAccountName(req.AccountName); ok {
		return "", i18n.New(i18n.AccountNameTaken, req.Language)
	}
	if _, ok := s.store.UsersGetByEmail(req.Email); ok {
		return "", i18n.New(i18n.EmailTaken, req.Language)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return "", i18n.New(i18n.Internal, req.Language)
	}

	id := s.store.UsersInsert(store.Registration{
		AccountName:  req.AccountName,
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		PasswordHash: hash,
		Language:     req.Language,
	})
	return id, nil
}

// Login resolves identity to a user and verifies password against its
// stored hash.
func (s *Service) Login(identity LoginIdentity, password string, lang i18n.Language) (store.UserID, *i18n.Error) {
	var (
		u  store.User
		ok bool
	)
	switch {
	case identity.AccountName != "":
		u, ok = s.store.UsersGetByAccountName(identity.AccountName)
	case identity.Email != "":
		u, ok = s.store.UsersGetByEmail(identity.Email)
	}
	if !ok || !s.verifier.Verify(u.PasswordHash, password) {
		return "", i18n.New(i18n.InvalidLogin, lang)
	}
	return u.ID, nil
}

// SendFriendRequest implements spec §4.4's SendFriendRequest, including
// the crossed-request auto-accept resolution of Open Question 4.
func (s *Service) SendFriendRequest(from, to store.UserID, lang i18n.Language) (RefreshPlan, *i18n.Error) {
	if from == to {
		// SelfTargeted is silently ignored, not an error (spec §7).
		return nil, nil
	}
	if !s.store.UserExists(to) {
		return nil, i18n.New(i18n.UnknownUser, lang)
	}
	if s.store.IsBlocked(from, to) || s.store.IsBlocked(to, from) {
		return nil, i18n.New(i18n.UserBlocked, lang)
	}
	if s.areFriends(from, to) {
		return nil, i18n.New(i18n.AlreadyFriends, lang)
	}
	if s.store.FriendRequestExists(from, to) {
		// Idempotent no-op: a repeated identical request changes nothing.
		return nil, nil
	}

	if s.store.FriendRequestExists(to, from) {
		// Crossed requests: `to` already asked `from` earlier. Treat this
		// call as finalizing that request rather than creating a new one.
		s.store.FriendRequestsRemove(to, from)
		s.store.FriendsAdd(from, to)
		s.store.FriendsAdd(to, from)
		friend := to
		return RefreshPlan{
			{User: from, Accepted: &friend, FriendRequests: true, Friends: true},
			{User: to, Friends: true},
		}, nil
	}

	s.store.FriendRequestsInsert(from, to)
	return RefreshPlan{
		{User: to, FriendRequests: true, Friends: true},
		{User: from, Friends: true},
	}, nil
}

// AcceptFriendRequest implements spec §4.4's AcceptFriendRequest. A
// missing or already-resolved request is treated as a no-op, symmetric
// with RejectFriendRequest's documented no-op behavior.
func (s *Service) AcceptFriendRequest(acceptor, other store.UserID, lang i18n.Language) (RefreshPlan, *i18n.Error) {
	if !s.store.FriendRequestExists(other, acceptor) {
		return nil, nil
	}
	if s.areFriends(acceptor, other) {
		return nil, nil
	}
	if s.store.IsBlocked(acceptor, other) || s.store.IsBlocked(other, acceptor) {
		return nil, i18n.New(i18n.UserBlocked, lang)
	}

	s.store.FriendRequestsRemove(other, acceptor)
	s.store.FriendsAdd(acceptor, other)
	s.store.FriendsAdd(other, acceptor)

	friend := other
	return RefreshPlan{
		{User: acceptor, Accepted: &friend, Friends: true},
		{User: other, Friends: true},
	}, nil
}

// RejectFriendRequest implements spec §4.4's RejectFriendRequest.
func (s *Service) RejectFriendRequest(rejector, other store.UserID, lang i18n.Language) (RefreshPlan, *i18n.Error) {
	if !s.store.FriendRequestExists(other, rejector) {
		return nil, nil
	}
	s.store.FriendRequestsRemove(other, rejector)
	return RefreshPlan{
		{User: rejector, FriendRequests: true, Friends: true},
		{User: other, Friends: true},
	}, nil
}

// RemoveFriend implements spec §4.4's RemoveFriend. It always succeeds:
// removing a friendship/request that does not exist is a no-op at the
// Store layer.
func (s *Service) RemoveFriend(actor, other store.UserID, lang i18n.Language) (RefreshPlan, *i18n.Error) {
	s.store.FriendsRemove(actor, other)
	s.store.FriendsRemove(other, actor)
	s.store.FriendRequestsRemove(actor, other)
	s.store.FriendRequestsRemove(other, actor)
	return RefreshPlan{
		{User: actor, Friends: true},
		{User: other, Friends: true},
	}, nil
}

// BlockUser implements spec §4.4's BlockUser: tears down any friendship
// or pending request between the pair, then inserts the block.
func (s *Service) BlockUser(blocker, blocked store.UserID, lang i18n.Language) (RefreshPlan, *i18n.Error) {
	if blocker == blocked {
		return nil, nil
	}
	s.store.FriendsRemove(blocker, blocked)
	s.store.FriendsRemove(blocked, blocker)
	s.store.FriendRequestsRemove(blocker, blocked)
	s.store.FriendRequestsRemove(blocked, blocker)
	s.store.BlocksInsert(blocker, blocked)
	return RefreshPlan{
		{User: blocker, Friends: true},
		{User: blocked, Friends: true},
	}, nil
}

// UnblockUser implements spec §4.4's UnblockUser.
func (s *Service) UnblockUser(blocker, blocked store.UserID, lang i18n.Language) (RefreshPlan, *i18n.Error) {
	s.store.BlocksRemove(blocker, blocked)
	return RefreshPlan{
		{User: blocker, Friends: true},
		{User: blocked, Friends: true},
	}, nil
}

// FriendSnapshot returns id's Friend row as seen immediately after a
// friendship with it is established: presence-derived status only, since
// none of the request/block statuses can apply to a brand-new friend.
func (s *Service) FriendSnapshot(id store.UserID) Friend {
	status := StatusOffline
	if s.sessions.IsOnline(id) {
		status = StatusOnline
	}
	return Friend{ID: id, DisplayName: s.displayName(id), Status: status}
}

func (s *Service) displayName(id store.UserID) string {
	if u, ok := s.store.UsersGet(id); ok {
		return u.DisplayName
	}
	return ""
}

// FriendsView computes the Friends projection for viewer (spec §4.4):
// one entry per related user with its derived status, deduplicated,
// sorted by id for a stable (if unspecified) order.
func (s *Service) FriendsView(viewer store.UserID) []Friend {
	statuses := make(map[store.UserID]FriendStatus)

	for _, u := range s.store.FriendsGet(viewer) {
		if s.sessions.IsOnline(u) {
			statuses[u] = StatusOnline
		} else {
			statuses[u] = StatusOffline
		}
	}
	for _, u := range s.store.FriendRequestsOutgoing(viewer) {
		if _, ok := statuses[u]; !ok {
			statuses[u] = StatusFriendRequestSent
		}
	}
	for _, u := range s.store.FriendRequestsIncoming(viewer) {
		if _, ok := statuses[u]; !ok {
			statuses[u] = StatusFriendRequestReceived
		}
	}
	for _, u := range s.store.BlocksOutgoing(viewer) {
		statuses[u] = StatusBlocked
	}

	return s.materialize(statuses)
}

// FriendRequestsView computes the incoming-request projection for viewer
// (spec §4.4): the senders of requests addressed to viewer.
func (s *Service) FriendRequestsView(viewer store.UserID) []Friend {
	statuses := make(map[store.UserID]FriendStatus)
	for _, u := range s.store.FriendRequestsIncoming(viewer) {
		statuses[u] = StatusFriendRequestReceived
	}
	return s.materialize(statuses)
}

func (s *Service) materialize(statuses map[store.UserID]FriendStatus) []Friend {
	out := make([]Friend, 0, len(statuses))
	for id, status := range statuses {
		out = append(out, Friend{ID: id, DisplayName: s.displayName(id), Status: status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
