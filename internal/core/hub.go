package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brnhrs/warhorse-server/internal/chat"
	"github.com/brnhrs/warhorse-server/internal/i18n"
	"github.com/brnhrs/warhorse-server/internal/relationship"
	"github.com/brnhrs/warhorse-server/internal/session"
	"github.com/brnhrs/warhorse-server/internal/store"
)

// Hub is the single critical section described in spec §5: every command
// runs on the Hub's one Run goroutine, so commands are serialized with
// respect to each other. relationship.Service holds no lock of its own
// (the store guards each individual operation) and chat.Router guards its
// room membership map; both release their locks before returning, so no
// send happens while any service lock is held and the Hub's job is purely
// to route plans to clients.
type Hub struct {
	store    store.Store
	sessions *session.Registry
	rel      *relationship.Service
	chat     *chat.Router
	general  store.RoomID
	logger   zerolog.Logger

	clientsMu sync.Mutex
	clients   map[session.ID]*Client

	registerCh   chan *Client
	unregisterCh chan *Client
	inbox        chan inboundCommand

	tokens ResumeTokenIssuer
}

// SetResumeTokenIssuer wires an optional resume-token issuer (normally
// *auth.Service). Left unset, EventLoginOK carries no ResumeToken.
func (h *Hub) SetResumeTokenIssuer(tokens ResumeTokenIssuer) {
	h.tokens = tokens
}

type inboundCommand struct {
	client *Client
	cmd    *Command
}

// ResumeTokenIssuer mints a session-resume token for a just-bound user.
// Satisfied by *auth.Service; the Hub depends on the interface, not the
// package, to keep the dependency direction pointing outward from core.
type ResumeTokenIssuer interface {
	IssueResumeToken(userID store.UserID) (string, error)
}

// NewHub wires the Hub to its collaborators. logger is the process-wide
// sink for dropped outbound events, displaced sessions, commands from
// unauthenticated sessions and resume-token failures; commands are not
// logged individually by kind or outcome. The password field is never
// logged.
func NewHub(st store.Store, sessions *session.Registry, rel *relationship.Service, router *chat.Router, general store.RoomID, logger zerolog.Logger) *Hub {
	return &Hub{
		store:        st,
		sessions:     sessions,
		rel:          rel,
		chat:         router,
		general:      general,
		logger:       logger,
		clients:      make(map[session.ID]*Client),
		registerCh:   make(chan *Client),
		unregisterCh: make(chan *Client),
		inbox:        make(chan inboundCommand, 256),
	}
}

// RegisterClient admits a newly connected session into the hub. It
// blocks until the hub's Run loop picks it up.
func (h *Hub) RegisterClient(c *Client) {
	h.registerCh <- c
}

// UnregisterClient tears a session down: unbinds it from the session
// registry, removes it from any chat rooms, and stops routing events to
// it.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregisterCh <- c
}

// Run is the hub's single goroutine. It must be started exactly once;
// cancel ctx to stop it.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.registerCh:
			h.onRegister(ctx, c)
		case c := <-h.unregisterCh:
			h.onUnregister(c)
		case ic := <-h.inbox:
			h.handle(ic.client, ic.cmd)
		}
	}
}

func (h *Hub) onRegister(ctx context.Context, c *Client) {
	h.clientsMu.Lock()
	h.clients[c.ID] = c
	h.clientsMu.Unlock()

	go h.forward(ctx, c)

	h.emit(c, &Event{Kind: EventHello, Hello: i18n.HelloMessage(i18n.English)})
}

// forward drains a client's Commands channel into the hub's single inbox,
// preserving per-session order (spec §5: "the dispatcher processes each
// session's events in that order").
func (h *Hub) forward(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.inbox <- inboundCommand{client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) onUnregister(c *Client) {
	h.clientsMu.Lock()
	delete(h.clients, c.ID)
	h.clientsMu.Unlock()

	// Derived-presence refreshes for the disconnected user's friends are
	// not pushed proactively (spec §4.6 point 4 / §9 Open Question 2):
	// connected friends observe the change on their next natural refresh.
	h.sessions.UnbindBySession(c.ID)
	h.chat.Leave(c.ID)
}

func (h *Hub) clientFor(sess session.ID) (*Client, bool) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	c, ok := h.clients[sess]
	return c, ok
}

// emit is a best-effort send: a slow or gone consumer is dropped, logged,
// and never blocks or fails the originating command (spec §5).
func (h *Hub) emit(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		h.logger.Warn().Str("session", string(c.ID)).Int("kind", int(ev.Kind)).Msg("dropped outbound event: slow consumer")
	}
}

func (h *Hub) emitError(c *Client, err *i18n.Error) {
	h.emit(c, &Event{Kind: EventError, Error: err.Error()})
}

// handle dispatches one decoded command. This is the dispatcher's
// compute-then-emit discipline in miniature: each branch calls exactly
// one Service command, then turns its result into Client.Events sends.
func (h *Hub) handle(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandRegister:
		h.handleRegister(c, cmd)
	case CommandLogin:
		h.handleLogin(c, cmd)
	case CommandLogout:
		// unbind + leave rooms; session itself stays connected
		h.sessions.UnbindBySession(c.ID)
		h.chat.Leave(c.ID)
	case CommandBlockUser:
		h.withActor(c, cmd, func(actor store.UserID) (relationship.RefreshPlan, *i18n.Error) {
			return h.rel.BlockUser(actor, cmd.TargetUser, cmd.Language)
		})
	case CommandUnblockUser:
		h.withActor(c, cmd, func(actor store.UserID) (relationship.RefreshPlan, *i18n.Error) {
			return h.rel.UnblockUser(actor, cmd.TargetUser, cmd.Language)
		})
	case CommandSendFriendRequest:
		h.withActor(c, cmd, func(actor store.UserID) (relationship.RefreshPlan, *i18n.Error) {
			return h.rel.SendFriendRequest(actor, cmd.TargetUser, cmd.Language)
		})
	case CommandAcceptFriendRequest:
		h.withActor(c, cmd, func(actor store.UserID) (relationship.RefreshPlan, *i18n.Error) {
			return h.rel.AcceptFriendRequest(actor, cmd.TargetUser, cmd.Language)
		})
	case CommandRejectFriendRequest:
		h.withActor(c, cmd, func(actor store.UserID) (relationship.RefreshPlan, *i18n.Error) {
			return h.rel.RejectFriendRequest(actor, cmd.TargetUser, cmd.Language)
		})
	case CommandRemoveFriend:
		h.withActor(c, cmd, func(actor store.UserID) (relationship.RefreshPlan, *i18n.Error) {
			return h.rel.RemoveFriend(actor, cmd.TargetUser, cmd.Language)
		})
	case CommandSendChatMessage:
		h.handleChat(c, cmd)
	case CommandResumeSession:
		h.bindAndGreet(c, cmd.TargetUser)
	}
}

func (h *Hub) handleRegister(c *Client, cmd *Command) {
	id, err := h.rel.Register(cmd.Register)
	if err != nil {
		h.emitError(c, err)
		return
	}
	h.bindAndGreet(c, id)
}

func (h *Hub) handleLogin(c *Client, cmd *Command) {
	id, err := h.rel.Login(cmd.Identity, cmd.Password, cmd.Language)
	if err != nil {
		h.emitError(c, err)
		return
	}
	h.bindAndGreet(c, id)
}

// bindAndGreet binds the session (displacing any prior one, spec §9 Open
// Question 1: the newer session wins silently), joins the general room,
// then pushes the acknowledgement and the two views the new session has
// no other way to request.
func (h *Hub) bindAndGreet(c *Client, user store.UserID) {
	if displaced, had := h.sessions.Bind(c.ID, user); had {
		h.logger.Info().Str("user", string(user)).Str("displaced_session", string(displaced)).Msg("login displaced a prior session")
	}
	h.chat.JoinGeneral(c.ID)

	ack := Event{Kind: EventLoginOK}
	if h.tokens != nil {
		if token, err := h.tokens.IssueResumeToken(user); err == nil {
			ack.ResumeToken = token
		} else {
			h.logger.Warn().Err(err).Str("user", string(user)).Msg("failed to issue resume token")
		}
	}
	h.emit(c, &ack)
	h.emit(c, &Event{Kind: EventFriendRequests, FriendRequests: h.rel.FriendRequestsView(user)})
	h.emit(c, &Event{Kind: EventFriends, Friends: h.rel.FriendsView(user)})
}

// withActor resolves the acting user from the session registry and runs
// fn, then applies the resulting RefreshPlan. Commands from an
// unauthenticated session are logged and dropped.
func (h *Hub) withActor(c *Client, cmd *Command, fn func(actor store.UserID) (relationship.RefreshPlan, *i18n.Error)) {
	actor, ok := h.sessions.UserOf(c.ID)
	if !ok {
		h.logger.Warn().Str("session", string(c.ID)).Msg("command from unauthenticated session dropped")
		return
	}
	plan, err := fn(actor)
	if err != nil {
		h.emitError(c, err)
		return
	}
	h.applyRefreshPlan(plan)
}

// applyRefreshPlan resolves each target user to its session (if online,
// dropping it otherwise) and emits in the order spec §5 requires:
// FriendRequestAccepted, then FriendRequests, then Friends.
func (h *Hub) applyRefreshPlan(plan relationship.RefreshPlan) {
	for _, entry := range plan {
		sess, online := h.sessions.SessionOf(entry.User)
		if !online {
			continue
		}
		target, ok := h.clientFor(sess)
		if !ok {
			continue
		}
		if entry.Accepted != nil {
			friend := h.rel.FriendSnapshot(*entry.Accepted)
			h.emit(target, &Event{Kind: EventFriendRequestAccepted, Accepted: &friend})
		}
		if entry.FriendRequests {
			h.emit(target, &Event{Kind: EventFriendRequests, FriendRequests: h.rel.FriendRequestsView(entry.User)})
		}
		if entry.Friends {
			h.emit(target, &Event{Kind: EventFriends, Friends: h.rel.FriendsView(entry.User)})
		}
	}
}

func (h *Hub) handleChat(c *Client, cmd *Command) {
	actor, ok := h.sessions.UserOf(c.ID)
	if !ok {
		h.logger.Warn().Str("session", string(c.ID)).Msg("chat send from unauthenticated session dropped")
		return
	}
	plan, err := h.chat.SendChatMessage(actor, cmd.Channel, cmd.Text, cmd.Language, time.Now().Unix())
	if err != nil {
		h.emitError(c, err)
		return
	}
	for _, delivery := range plan {
		target, ok := h.clientFor(delivery.Session)
		if !ok {
			continue
		}
		msg := delivery.Message
		h.emit(target, &Event{Kind: EventChatMessage, Chat: &msg})
	}
}
