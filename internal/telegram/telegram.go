package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
)

// ErrChatNotFound is returned by ResolveChat when the reference names no chat
// the bot can see.
var ErrChatNotFound = errors.New("chat not found")

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go -package=mocks

type Client interface {
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()

	// SendMessage sends a plain-text reply.
	SendMessage(chatID int64, text string) (int, error)
	// SendNotification sends a rendered MarkdownV2 notification, as a photo
	// with caption when PhotoURL is set.
	SendNotification(ctx context.Context, chatID int64, n domain.Notification) (int, error)

	// ResolveChat accepts a numeric chat id or an @username.
	ResolveChat(ctx context.Context, ref string) (domain.Chat, error)
	// BotPermissions reports what the bot itself may do in chat.
	BotPermissions(ctx context.Context, chat domain.Chat) (domain.Permissions, error)
	Member(ctx context.Context, chatID, userID int64) (domain.Member, error)

	RegisterCommands(commands []tgbotapi.BotCommand) error
}
