package command

import "context"

// Command names as typed in chat, without the leading slash.
const (
	SetChannel   = "set_giveaway_channel"
	ViewChannel  = "view_giveaway_channel"
	ClearChannel = "clear_giveaway_channel"
	ListRecent   = "list_recent_offers"
	Resend       = "resend_giveaway"
	Start        = "start"
	Help         = "help"
)

// Error codes attached to command failures, next to the delivery reasons.
const (
	CodeForbidden    = "forbidden"
	CodeInvalidInput = "invalid_input"
	CodeNotFound     = "not_found"
	CodeUnavailable  = "unavailable"
	CodeGroupOnly    = "group_only"
)

// Invocation is one parsed command message.
type Invocation struct {
	// CommunityID is the chat the command was issued in.
	CommunityID int64
	UserID      int64
	// Anonymous is set when a group admin posted as the group itself.
	Anonymous bool
	Private   bool
	Args      string
}

type Client interface {
	// HandleCommand consumes updates until ctx is done or the update
	// channel closes.
	HandleCommand(ctx context.Context) error
}
