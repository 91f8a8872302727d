// Package proto defines the wire envelope and payload shapes of spec §6's
// event catalogue: a JSON object per emission, `{event_name, payload}`.
// Tagged unions (LoginIdentity, Channel) are plain structs with
// `omitempty` pointer fields, which already serializes to the
// single-key-object form spec §9 calls out (`{Variant: payload}`)
// without any custom marshaling.
package proto

import "encoding/json"

// Event names, C→S and S→C, exactly as spec §6 lists them.
const (
	EventHello                 = "hello"
	EventUserLogin             = "/user/login"
	EventUserRegister          = "/user/register"
	EventUserLogout            = "/user/logout"
	EventUserBlock             = "/user/block"
	EventUserUnblock           = "/user/unblock"
	EventFriendRequest         = "/friend/request"
	EventFriendRequestAccept   = "/friend/request/accept"
	EventFriendRequestReject   = "/friend/request/reject"
	EventFriendRemove          = "/friend/remove"
	EventChatSend              = "/chat/send"
	EventFriendsReceive        = "/friends/receive"
	EventFriendRequestsReceive = "/friend_requests/receive"
	EventFriendRequestAccepted = "/friend_request/accepted"
	EventChatReceive           = "/chat/receive"
	EventError                 = "/error"
)

// Envelope is the single wire shape for every emission in either
// direction: an event name and its one JSON argument.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// LoginIdentity is the tagged union of /user/login's identity field.
type LoginIdentity struct {
	AccountName *string `json:"AccountName,omitempty"`
	Email       *string `json:"Email,omitempty"`
}

// Channel is the tagged union of /chat/send's channel field and
// /chat/receive's echoed channel.
type Channel struct {
	Room           *string `json:"Room,omitempty"`
	PrivateMessage *string `json:"PrivateMessage,omitempty"`
}

// LoginPayload is /user/login's C→S payload.
type LoginPayload struct {
	Language int           `json:"language"`
	Identity LoginIdentity `json:"identity"`
	Password string        `json:"password"`
}

// RegisterPayload is /user/register's C→S payload.
type RegisterPayload struct {
	Language    int    `json:"language"`
	AccountName string `json:"account_name"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// BlockPayload is /user/block and /user/unblock's C→S payload.
type BlockPayload struct {
	Language int    `json:"language"`
	UserID   string `json:"user_id"`
}

// FriendTargetPayload is the C→S payload shared by /friend/request,
// /friend/request/accept, /friend/request/reject and /friend/remove.
type FriendTargetPayload struct {
	Language int    `json:"language"`
	FriendID string `json:"friend_id"`
}

// ChatSendPayload is /chat/send's C→S payload.
type ChatSendPayload struct {
	Language int     `json:"language"`
	Channel  Channel `json:"channel"`
	Message  string  `json:"message"`
}

// LoginAckPayload is /user/login's S→C success acknowledgement. ResumeToken
// is additive to spec §6's documented `{}` shape: an enrichment (see
// internal/auth) that a reconnecting client may present to skip
// re-authenticating, omitted entirely when no issuer is wired in.
type LoginAckPayload struct {
	ResumeToken string `json:"resume_token,omitempty"`
}

// FriendPayload is the wire form of a Friend row: `{id, display_name, status}`.
type FriendPayload struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
}

// FriendAcceptedPayload is /friend_request/accepted's S→C payload.
type FriendAcceptedPayload struct {
	Friend FriendPayload `json:"friend"`
}

// ChatMessagePayload is /chat/receive's S→C payload.
type ChatMessagePayload struct {
	DisplayName string  `json:"display_name"`
	Channel     Channel `json:"channel"`
	Message     string  `json:"message"`
	Time        int64   `json:"time"`
}

// Status string constants for FriendPayload.Status, matching the derived
// FriendStatus names of spec §3 verbatim.
const (
	StatusOnline                = "Online"
	StatusOffline               = "Offline"
	StatusFriendRequestSent     = "FriendRequestSent"
	StatusFriendRequestReceived = "FriendRequestReceived"
	StatusBlocked               = "Blocked"
)
