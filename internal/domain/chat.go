package domain

const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
	ChatTypeChannel    = "channel"
)

// Capability names reported back to operators.
const (
	CapabilityViewChat     = "view_chat"
	CapabilitySendMessages = "send_messages"
	CapabilitySendMedia    = "send_media"
)

// Chat is a resolved destination handle.
type Chat struct {
	ID       int64
	Type     string
	Title    string
	Username string
}

// TextCapable reports whether the chat can carry notifications for a community.
// Private chats are excluded because they do not belong to a community.
func (c Chat) TextCapable() bool {
	switch c.Type {
	case ChatTypeGroup, ChatTypeSupergroup, ChatTypeChannel:
		return true
	default:
		return false
	}
}

// Mention renders the chat for operator replies.
func (c Chat) Mention() string {
	if c.Username != "" {
		return "@" + c.Username
	}
	if c.Title != "" {
		return c.Title
	}
	return "chat"
}

// Permissions is the bot's effective capability set in a chat.
type Permissions struct {
	CanView      bool
	CanSend      bool
	CanSendMedia bool
}

// Missing lists the required capabilities that are absent.
func (p Permissions) Missing() []string {
	var missing []string
	if !p.CanView {
		missing = append(missing, CapabilityViewChat)
	}
	if !p.CanSend {
		missing = append(missing, CapabilitySendMessages)
	}
	return missing
}

// Member describes a user's standing in a community chat.
type Member struct {
	Status        string
	CanChangeInfo bool
}

// Elevated reports whether the member may change bot settings for the chat.
func (m Member) Elevated() bool {
	switch m.Status {
	case "creator":
		return true
	case "administrator":
		return m.CanChangeInfo
	default:
		return false
	}
}

// Notification is a rendered offer ready to send.
// Text is MarkdownV2; PhotoURL, when set, is sent with Text as caption.
type Notification struct {
	Text     string
	PhotoURL string
}
