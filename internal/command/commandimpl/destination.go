package commandimpl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/orgball2608/giveaway-telegram-bot/internal/command"
	"github.com/orgball2608/giveaway-telegram-bot/internal/distributor"
	"github.com/orgball2608/giveaway-telegram-bot/internal/telegram"
	pkgerrors "github.com/orgball2608/giveaway-telegram-bot/pkg/errors"
)

func communityKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *CommandImpl) ConfigureDestination(ctx context.Context, inv command.Invocation) (string, error) {
	if err := c.requireElevated(ctx, inv); err != nil {
		return "", err
	}

	ref := strings.Fields(inv.Args)
	if len(ref) == 0 {
		return "", pkgerrors.WrapWithCode(pkgerrors.ErrInvalidInput, command.CodeInvalidInput,
			"Usage: /set_giveaway_channel <chat id or @username>")
	}

	chat, err := c.Telegram.ResolveChat(ctx, ref[0])
	if err != nil {
		if errors.Is(err, telegram.ErrChatNotFound) {
			return "", pkgerrors.WrapWithCode(pkgerrors.ErrNotFound, string(distributor.ReasonChannelNotFound),
				fmt.Sprintf("Channel %s was not found. Make sure the bot has been added to it.", ref[0]))
		}
		return "", unavailable(err, "Could not look up that channel right now. Please try again later.")
	}
	if !chat.TextCapable() {
		return "", pkgerrors.WrapWithCode(pkgerrors.ErrInvalidInput, string(distributor.ReasonNotTextCapable),
			fmt.Sprintf("%s is a %s chat and cannot receive giveaway posts. Pick a group or channel.", ref[0], chat.Type))
	}

	channelID := communityKey(chat.ID)
	if err := c.Destinations.Set(ctx, communityKey(inv.CommunityID), channelID); err != nil {
		c.Logger.Error("Failed to persist guild channel map", "community", inv.CommunityID, "error", err)
	}

	reply := fmt.Sprintf("✅ Giveaways for this group will be posted to %s (%s).", chat.Mention(), channelID)

	perms, err := c.Telegram.BotPermissions(ctx, chat)
	if err != nil {
		c.Logger.Warn("Could not check bot permissions in new channel", "channel", channelID, "error", err)
		return reply, nil
	}
	if missing := perms.Missing(); len(missing) > 0 {
		reply += fmt.Sprintf("\n⚠️ The bot is missing %s there, posts will fail until that is fixed.", strings.Join(missing, ", "))
	} else if !perms.CanSendMedia {
		reply += "\nℹ️ The bot cannot send media there, offers will be posted as text."
	}
	return reply, nil
}

func (c *CommandImpl) ViewDestination(_ context.Context, inv command.Invocation) (string, error) {
	if err := requireGroup(inv); err != nil {
		return "", err
	}

	if channel, ok := c.Destinations.Get(communityKey(inv.CommunityID)); ok {
		return fmt.Sprintf("Giveaways for this group are posted to %s.", channel), nil
	}
	if fallback := c.Config.Telegram.FallbackChannel; fallback != "" {
		return fmt.Sprintf("No channel is set for this group. Offers go to the default channel %s.", fallback), nil
	}
	return "No giveaway channel is configured for this group. An admin can set one with /set_giveaway_channel.", nil
}

func (c *CommandImpl) ClearDestination(ctx context.Context, inv command.Invocation) (string, error) {
	if err := c.requireElevated(ctx, inv); err != nil {
		return "", err
	}

	existed, err := c.Destinations.Delete(ctx, communityKey(inv.CommunityID))
	if err != nil {
		c.Logger.Error("Failed to persist guild channel map", "community", inv.CommunityID, "error", err)
	}
	if !existed {
		return "No giveaway channel was set for this group.", nil
	}
	return "🗑 Giveaway channel cleared. This group will no longer receive offers.", nil
}

// destinationFor returns the group's mapped channel, else the fallback.
func (c *CommandImpl) destinationFor(inv command.Invocation) (string, bool) {
	if channel, ok := c.Destinations.Get(communityKey(inv.CommunityID)); ok {
		return channel, true
	}
	if fallback := c.Config.Telegram.FallbackChannel; fallback != "" {
		return fallback, true
	}
	return "", false
}
