// Package core is the Event Dispatcher of spec §4.6: it binds transport
// sessions to authenticated users, owns the single entry point for
// inbound commands, and turns the RefreshPlan/DeliveryPlan values
// returned by internal/relationship and internal/chat into concrete
// outbound events. Grounded on the teacher's hub/client/room shape (one
// central Hub goroutine, per-client Commands/Events channels) but
// retargeted from generic chat rooms to the social-graph domain.
package core

import "github.com/brnhrs/warhorse-server/internal/session"

// Client is one connected transport session as seen by the Hub. It knows
// nothing about websockets or JSON; the transport layer pumps decoded
// Commands in and drains Events out.
type Client struct {
	ID       session.ID
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a Client with buffered channels sized for normal
// interactive traffic; a slow consumer backs up its own Events channel,
// never another client's.
func NewClient(id session.ID) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 16),
		Events:   make(chan *Event, 16),
	}
}
