package commandimpl

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/giveaway-telegram-bot/internal/command"
	pkgerrors "github.com/orgball2608/giveaway-telegram-bot/pkg/errors"
	"github.com/panjf2000/ants/v2"
)

const helpMessage = `🎮 Free game giveaways, checked on a schedule and posted to your group's channel.

Group admins:
/set_giveaway_channel <chat id or @username> - Choose where offers are posted.
/clear_giveaway_channel - Stop posting offers for this group.
/resend_giveaway <offer id> - Post a cached offer again.

Everyone:
/view_giveaway_channel - Show where offers are posted.
/list_recent_offers [count] - Show recent offers (1-25, default 10).
/help - Show this guide.`

const (
	throttledMessage = "Slow down a little, try again in a few seconds."
	unknownMessage   = "Unknown command. Type /help to see the list of available commands."
	internalMessage  = "Something went wrong. Please try again later."
	releaseTimeout   = 5 * time.Second
)

// Commands is the menu published with setMyCommands.
func Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: command.SetChannel, Description: "Set the channel giveaways are posted to"},
		{Command: command.ViewChannel, Description: "Show the giveaway channel"},
		{Command: command.ClearChannel, Description: "Remove the giveaway channel"},
		{Command: command.ListRecent, Description: "List recently cached offers"},
		{Command: command.Resend, Description: "Post a cached offer again"},
		{Command: command.Help, Description: "Show help"},
	}
}

func (c *CommandImpl) HandleCommand(ctx context.Context) error {
	pool, err := ants.NewPool(c.workers(), ants.WithPanicHandler(func(r any) {
		c.Logger.Error("Panic recovered while processing an update", "panic", r, "stack", string(debug.Stack()))
	}))
	if err != nil {
		return fmt.Errorf("failed to create update pool: %w", err)
	}
	defer func() {
		if err := pool.ReleaseTimeout(releaseTimeout); err != nil {
			c.Logger.Warn("Update workers did not finish in time", "error", err)
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.Telegram.GetUpdatesChan(u)
	c.Logger.Info("Command handler started, listening for updates.", "workers", c.workers())

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Command handler shutting down.")
			c.Telegram.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				c.Logger.Warn("Telegram updates channel closed unexpectedly.")
				return errors.New("telegram updates channel closed")
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			msg := update.Message
			if err := pool.Submit(func() { c.processCommand(ctx, msg) }); err != nil {
				c.Logger.Error("Failed to submit update to pool", "command", msg.Command(), "error", err)
			}
		}
	}
}

func (c *CommandImpl) workers() int {
	if n := c.Config.Command.Workers; n > 0 {
		return n
	}
	return 1
}

func (c *CommandImpl) processCommand(ctx context.Context, msg *tgbotapi.Message) {
	inv, ok := invocation(msg)
	if !ok {
		return
	}
	name := msg.Command()

	c.Logger.Info("Command received", "command", name, "chat", inv.CommunityID, "user", inv.UserID)

	if !c.Limiter.Allow(inv.UserID) {
		c.reply(inv.CommunityID, throttledMessage)
		return
	}

	reply, err := c.Dispatch(ctx, name, inv)
	if err != nil {
		reply = replyForError(err)
		logFn := c.Logger.Warn
		if pkgerrors.IsCallerError(err) {
			logFn = c.Logger.Info
		}
		logFn("Command failed",
			"command", name,
			"chat", inv.CommunityID,
			"code", pkgerrors.GetCode(err),
			"error", err,
		)
	}
	c.reply(inv.CommunityID, reply)
}

// Dispatch runs the named command and returns the reply text.
func (c *CommandImpl) Dispatch(ctx context.Context, name string, inv command.Invocation) (string, error) {
	switch name {
	case command.Start, command.Help:
		return helpMessage, nil
	case command.SetChannel:
		return c.ConfigureDestination(ctx, inv)
	case command.ViewChannel:
		return c.ViewDestination(ctx, inv)
	case command.ClearChannel:
		return c.ClearDestination(ctx, inv)
	case command.ListRecent:
		return c.ListRecent(ctx, inv)
	case command.Resend:
		return c.Resend(ctx, inv)
	default:
		return unknownMessage, nil
	}
}

func (c *CommandImpl) reply(chatID int64, text string) {
	if _, err := c.Telegram.SendMessage(chatID, text); err != nil {
		c.Logger.Error("Failed to send reply", "chat", chatID, "error", err)
	}
}

// invocation extracts the caller. Messages without a sender are ignored.
func invocation(msg *tgbotapi.Message) (command.Invocation, bool) {
	if msg.Chat == nil {
		return command.Invocation{}, false
	}
	inv := command.Invocation{
		CommunityID: msg.Chat.ID,
		Private:     msg.Chat.IsPrivate(),
		Args:        strings.TrimSpace(msg.CommandArguments()),
	}
	if msg.SenderChat != nil && msg.SenderChat.ID == msg.Chat.ID {
		inv.Anonymous = true
		inv.UserID = msg.SenderChat.ID
		return inv, true
	}
	if msg.From == nil {
		return command.Invocation{}, false
	}
	inv.UserID = msg.From.ID
	return inv, true
}

// replyForError shows coded errors to the operator and hides the rest.
func replyForError(err error) string {
	if pkgerrors.GetCode(err) == "" {
		return internalMessage
	}
	return pkgerrors.GetMessage(err)
}
