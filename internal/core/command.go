package core

import (
	"github.com/brnhrs/warhorse-server/internal/chat"
	"github.com/brnhrs/warhorse-server/internal/i18n"
	"github.com/brnhrs/warhorse-server/internal/relationship"
	"github.com/brnhrs/warhorse-server/internal/store"
)

// CommandKind names one of the C→S events of spec §6.
type CommandKind int

const (
	CommandRegister CommandKind = iota
	CommandLogin
	CommandLogout
	CommandBlockUser
	CommandUnblockUser
	CommandSendFriendRequest
	CommandAcceptFriendRequest
	CommandRejectFriendRequest
	CommandRemoveFriend
	CommandSendChatMessage
	CommandResumeSession
)

// Command is a decoded inbound event, already validated for shape (but
// not yet for business rules — that happens in relationship/chat) by the
// transport-layer mapper.
type Command struct {
	Kind     CommandKind
	Language i18n.Language

	Register relationship.RegisterRequest // CommandRegister
	Identity relationship.LoginIdentity   // CommandLogin
	Password string                       // CommandLogin

	TargetUser store.UserID // Block/Unblock/friend-request commands; also the pre-resolved user for CommandResumeSession

	Channel chat.Channel // CommandSendChatMessage
	Text    string       // CommandSendChatMessage
}
