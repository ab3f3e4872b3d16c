package commandimpl

import (
	"context"
	"fmt"

	"github.com/orgball2608/giveaway-telegram-bot/internal/command"
	pkgerrors "github.com/orgball2608/giveaway-telegram-bot/pkg/errors"
)

func requireGroup(inv command.Invocation) error {
	if inv.Private {
		return pkgerrors.WrapWithCode(pkgerrors.ErrInvalidInput, command.CodeGroupOnly,
			"This command only works inside a group. Add the bot to your group and run it there.")
	}
	return nil
}

// requireElevated allows the group creator, admins with the change-info
// right, and admins posting anonymously as the group.
func (c *CommandImpl) requireElevated(ctx context.Context, inv command.Invocation) error {
	if err := requireGroup(inv); err != nil {
		return err
	}
	if inv.Anonymous {
		return nil
	}

	member, err := c.Telegram.Member(ctx, inv.CommunityID, inv.UserID)
	if err != nil {
		return unavailable(err, "Could not check your permissions right now. Please try again later.")
	}
	if !member.Elevated() {
		return pkgerrors.WrapWithCode(pkgerrors.ErrForbidden, command.CodeForbidden,
			"Only group admins with the \"Change group info\" right can do that.")
	}
	return nil
}

// unavailable codes a failure of an upstream call. The cause stays in the
// chain for logs.
func unavailable(cause error, message string) error {
	return pkgerrors.WrapWithCode(fmt.Errorf("%w: %w", pkgerrors.ErrUnavailable, cause), command.CodeUnavailable, message)
}
