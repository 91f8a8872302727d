// Package chat implements the Chat Router of spec §4.5: authorization and
// fan-out for whispers (friend-only, mutual non-block) and room broadcast
// (ambient "general" room, membership is per-session). Grounded on the
// original Rust server's send_chat_message/user_in_room in server.rs,
// reshaped around an explicit DeliveryPlan return instead of inline
// socket emits.
package chat

import (
	"sync"

	"github.com/brnhrs/warhorse-server/internal/i18n"
	"github.com/brnhrs/warhorse-server/internal/session"
	"github.com/brnhrs/warhorse-server/internal/store"
)

// Channel is the tagged union of spec §4.5: exactly one of Room or
// PrivateMessage is set.
type Channel struct {
	Room           *store.RoomID
	PrivateMessage *store.UserID
}

// RoomChannel builds a Channel addressed to a room.
func RoomChannel(room store.RoomID) Channel { return Channel{Room: &room} }

// PrivateChannel builds a Channel addressed to a single user.
func PrivateChannel(user store.UserID) Channel { return Channel{PrivateMessage: &user} }

// Message is the composed outbound chat payload (spec §6's ChatMessage).
type Message struct {
	DisplayName string
	Channel     Channel
	Text        string
	Time        int64 // unix seconds, UTC
}

// Delivery pairs an outbound Message with the session it must be emitted
// to. The Event Dispatcher resolves each Delivery to a transport write.
type Delivery struct {
	Session session.ID
	Message Message
}

// DeliveryPlan is the set of deliveries produced by SendChatMessage.
type DeliveryPlan []Delivery

// Router implements the Chat Router. It additionally owns room
// membership, since spec §4.5 specifies membership as a property of the
// session (not the user): a session joins "general" on bind and leaves
// every room it was in on disconnect.
type Router struct {
	mu          sync.Mutex
	store       store.Store
	sessions    *session.Registry
	members     map[store.RoomID]map[session.ID]struct{}
	generalRoom store.RoomID
}

// NewRouter constructs a Router. generalRoom is the ambient room every
// session auto-joins on bind (spec: canonically "general").
func NewRouter(st store.Store, sessions *session.Registry, generalRoom store.RoomID) *Router {
	return &Router{
		store:       st,
		sessions:    sessions,
		members:     make(map[store.RoomID]map[session.ID]struct{}),
		generalRoom: generalRoom,
	}
}

// JoinGeneral adds sess to the ambient general room. Call this once a
// session successfully binds to a user.
func (r *Router) JoinGeneral(sess session.ID) {
	r.Join(sess, r.generalRoom)
}

// Join adds sess to room. The reference implementation never exposes any
// room beyond "general", but nothing here assumes that.
func (r *Router) Join(sess session.ID, room store.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[room] == nil {
		r.members[room] = make(map[session.ID]struct{})
	}
	r.members[room][sess] = struct{}{}
}

// Leave removes sess from every room it belongs to. Call this on
// transport disconnect; a room "exists" only while it has members, so
// this also prunes empty rooms.
func (r *Router) Leave(sess session.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room, set := range r.members {
		delete(set, sess)
		if len(set) == 0 {
			delete(r.members, room)
		}
	}
}

// IsMember reports whether sess currently belongs to room.
func (r *Router) IsMember(sess session.ID, room store.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[room][sess]
	return ok
}

func (r *Router) membersOf(room store.RoomID) []session.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.ID, 0, len(r.members[room]))
	for s := range r.members[room] {
		out = append(out, s)
	}
	return out
}

func (r *Router) areFriends(a, b store.UserID) bool {
	for _, f := range r.store.FriendsGet(a) {
		if f == b {
			return true
		}
	}
	return false
}

// SendChatMessage implements spec §4.5's SendChatMessage. now is the
// caller-supplied current Unix time (kept injectable so tests are
// deterministic; internal/core passes time.Now().Unix()).
func (r *Router) SendChatMessage(sender store.UserID, channel Channel, text string, lang i18n.Language, now int64) (DeliveryPlan, *i18n.Error) {
	senderUser, ok := r.store.UsersGet(sender)
	if !ok {
		return nil, i18n.New(i18n.Internal, lang)
	}
	msg := Message{DisplayName: senderUser.DisplayName, Channel: channel, Text: text, Time: now}

	switch {
	case channel.PrivateMessage != nil:
		recipient := *channel.PrivateMessage
		if !r.areFriends(sender, recipient) {
			return nil, i18n.New(i18n.NotFriends, lang)
		}
		if r.store.IsBlocked(sender, recipient) || r.store.IsBlocked(recipient, sender) {
			return nil, i18n.New(i18n.UserBlocked, lang)
		}
		sess, online := r.sessions.SessionOf(recipient)
		if !online {
			// Offline recipient: deliver nothing, no error to the sender.
			return nil, nil
		}
		return DeliveryPlan{{Session: sess, Message: msg}}, nil

	case channel.Room != nil:
		senderSess, online := r.sessions.SessionOf(sender)
		if !online {
			return nil, i18n.New(i18n.NotConnected, lang)
		}
		if !r.IsMember(senderSess, *channel.Room) {
			return nil, i18n.New(i18n.NotInRoom, lang)
		}
		members := r.membersOf(*channel.Room)
		plan := make(DeliveryPlan, 0, len(members))
		for _, sess := range members {
			plan = append(plan, Delivery{Session: sess, Message: msg})
		}
		return plan, nil

	default:
		return nil, i18n.New(i18n.Internal, lang)
	}
}
