package http

import (
	"encoding/json"
	"fmt"

	"github.com/brnhrs/warhorse-server/internal/chat"
	"github.com/brnhrs/warhorse-server/internal/core"
	"github.com/brnhrs/warhorse-server/internal/proto"
	"github.com/brnhrs/warhorse-server/internal/relationship"
	"github.com/brnhrs/warhorse-server/internal/store"
)

// envelopeToCommand decodes one inbound proto.Envelope into a core.Command.
// Shape errors (malformed or absent JSON data, unknown event names) are
// returned as a plain error; fields absent from otherwise valid JSON
// decode as zero values and are not reported. Per spec §9 Open Question 3
// the caller logs and drops the envelope rather than tearing down the
// connection.
func envelopeToCommand(env proto.Envelope) (*core.Command, error) {
	switch env.Event {
	case proto.EventUserRegister:
		var p proto.RegisterPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return &core.Command{
			Kind:     core.CommandRegister,
			Language: store.Language(p.Language),
			Register: relationship.RegisterRequest{
				AccountName: p.AccountName,
				DisplayName: p.DisplayName,
				Email:       p.Email,
				Password:    p.Password,
				Language:    store.Language(p.Language),
			},
		}, nil

	case proto.EventUserLogin:
		var p proto.LoginPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		identity := relationship.LoginIdentity{}
		if p.Identity.AccountName != nil {
			identity.AccountName = *p.Identity.AccountName
		}
		if p.Identity.Email != nil {
			identity.Email = *p.Identity.Email
		}
		return &core.Command{
			Kind:     core.CommandLogin,
			Language: store.Language(p.Language),
			Identity: identity,
			Password: p.Password,
		}, nil

	case proto.EventUserLogout:
		return &core.Command{Kind: core.CommandLogout}, nil

	case proto.EventUserBlock:
		var p proto.BlockPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return &core.Command{
			Kind:       core.CommandBlockUser,
			Language:   store.Language(p.Language),
			TargetUser: store.UserID(p.UserID),
		}, nil

	case proto.EventUserUnblock:
		var p proto.BlockPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return &core.Command{
			Kind:       core.CommandUnblockUser,
			Language:   store.Language(p.Language),
			TargetUser: store.UserID(p.UserID),
		}, nil

	case proto.EventFriendRequest:
		p, err := decodeFriendTarget(env)
		if err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandSendFriendRequest, Language: store.Language(p.Language), TargetUser: store.UserID(p.FriendID)}, nil

	case proto.EventFriendRequestAccept:
		p, err := decodeFriendTarget(env)
		if err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandAcceptFriendRequest, Language: store.Language(p.Language), TargetUser: store.UserID(p.FriendID)}, nil

	case proto.EventFriendRequestReject:
		p, err := decodeFriendTarget(env)
		if err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandRejectFriendRequest, Language: store.Language(p.Language), TargetUser: store.UserID(p.FriendID)}, nil

	case proto.EventFriendRemove:
		p, err := decodeFriendTarget(env)
		if err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandRemoveFriend, Language: store.Language(p.Language), TargetUser: store.UserID(p.FriendID)}, nil

	case proto.EventChatSend:
		var p proto.ChatSendPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return &core.Command{
			Kind:     core.CommandSendChatMessage,
			Language: store.Language(p.Language),
			Channel:  channelFromWire(p.Channel),
			Text:     p.Message,
		}, nil

	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
}

func decodeFriendTarget(env proto.Envelope) (proto.FriendTargetPayload, error) {
	var p proto.FriendTargetPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return p, fmt.Errorf("decode %s: %w", env.Event, err)
	}
	return p, nil
}

func channelFromWire(c proto.Channel) chat.Channel {
	if c.Room != nil {
		return chat.RoomChannel(store.RoomID(*c.Room))
	}
	if c.PrivateMessage != nil {
		return chat.PrivateChannel(store.UserID(*c.PrivateMessage))
	}
	return chat.Channel{}
}

func channelToWire(c chat.Channel) proto.Channel {
	if c.Room != nil {
		room := string(*c.Room)
		return proto.Channel{Room: &room}
	}
	if c.PrivateMessage != nil {
		user := string(*c.PrivateMessage)
		return proto.Channel{PrivateMessage: &user}
	}
	return proto.Channel{}
}

func statusToWire(s relationship.FriendStatus) string {
	switch s {
	case relationship.StatusOnline:
		return proto.StatusOnline
	case relationship.StatusFriendRequestSent:
		return proto.StatusFriendRequestSent
	case relationship.StatusFriendRequestReceived:
		return proto.StatusFriendRequestReceived
	case relationship.StatusBlocked:
		return proto.StatusBlocked
	default:
		return proto.StatusOffline
	}
}

func friendToWire(f relationship.Friend) proto.FriendPayload {
	return proto.FriendPayload{
		ID:          string(f.ID),
		DisplayName: f.DisplayName,
		Status:      statusToWire(f.Status),
	}
}

func friendsToWire(friends []relationship.Friend) []proto.FriendPayload {
	out := make([]proto.FriendPayload, len(friends))
	for i, f := range friends {
		out[i] = friendToWire(f)
	}
	return out
}

// eventToEnvelope encodes one core.Event into its wire envelope. Returns
// false if the event kind has no wire representation (there are none
// today, but the switch mirrors envelopeToCommand's exhaustiveness).
func eventToEnvelope(ev *core.Event) (proto.Envelope, bool) {
	switch ev.Kind {
	case core.EventHello:
		return envelopeOf(proto.EventHello, ev.Hello)
	case core.EventLoginOK:
		return envelopeOf(proto.EventUserLogin, proto.LoginAckPayload{ResumeToken: ev.ResumeToken})
	case core.EventFriends:
		return envelopeOf(proto.EventFriendsReceive, friendsToWire(ev.Friends))
	case core.EventFriendRequests:
		return envelopeOf(proto.EventFriendRequestsReceive, friendsToWire(ev.FriendRequests))
	case core.EventFriendRequestAccepted:
		if ev.Accepted == nil {
			return proto.Envelope{}, false
		}
		return envelopeOf(proto.EventFriendRequestAccepted, proto.FriendAcceptedPayload{Friend: friendToWire(*ev.Accepted)})
	case core.EventChatMessage:
		if ev.Chat == nil {
			return proto.Envelope{}, false
		}
		return envelopeOf(proto.EventChatReceive, proto.ChatMessagePayload{
			DisplayName: ev.Chat.DisplayName,
			Channel:     channelToWire(ev.Chat.Channel),
			Message:     ev.Chat.Text,
			Time:        ev.Chat.Time,
		})
	case core.EventError:
		return envelopeOf(proto.EventError, ev.Error)
	default:
		return proto.Envelope{}, false
	}
}

func envelopeOf(name string, payload interface{}) (proto.Envelope, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		return proto.Envelope{}, false
	}
	return proto.Envelope{Event: name, Data: data}, true
}
