package core

import (
	"github.com/brnhrs/warhorse-server/internal/chat"
	"github.com/brnhrs/warhorse-server/internal/relationship"
)

// EventKind names one of the S→C events of spec §6.
type EventKind int

const (
	EventHello EventKind = iota
	EventLoginOK
	EventFriends
	EventFriendRequests
	EventFriendRequestAccepted
	EventChatMessage
	EventError
)

// Event is an outbound notification destined for exactly one Client.
type Event struct {
	Kind EventKind

	Hello string // EventHello

	// ResumeToken rides along with EventLoginOK when the Hub has a
	// ResumeTokenIssuer wired in. This is additive to spec §6's `{}` ack
	// payload (internal/auth is an enrichment, never a replacement of the
	// documented event catalogue).
	ResumeToken string // EventLoginOK

	Friends        []relationship.Friend // EventFriends
	FriendRequests []relationship.Friend // EventFriendRequests
	Accepted       *relationship.Friend  // EventFriendRequestAccepted

	Chat *chat.Message // EventChatMessage

	Error string // EventError, already localized
}
