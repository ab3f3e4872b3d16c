package telegramimpl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
)

// SendMessage sends a plain-text message to a specific chat ID
func (tg *TelegramImpl) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message", "chatID", chatID, "error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sentMsg.MessageID, nil
}

// SendNotification sends n as a captioned photo when it has one. If Telegram
// rejects the photo itself the text is sent on its own. Any other failure is
// returned, since the photo may have been delivered.
func (tg *TelegramImpl) SendNotification(ctx context.Context, chatID int64, n domain.Notification) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if n.PhotoURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(n.PhotoURL))
		photo.Caption = n.Text
		photo.ParseMode = tgbotapi.ModeMarkdownV2

		sent, err := tg.TgBot.Send(photo)
		if err == nil {
			return sent.MessageID, nil
		}
		if !isPhotoRejected(err) {
			return 0, fmt.Errorf("failed to send photo: %w", err)
		}
		tg.Logger.Warn("Photo rejected, falling back to text", "chatID", chatID, "photo", n.PhotoURL, "error", err)
	}

	msg := tgbotapi.NewMessage(chatID, n.Text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	sent, err := tg.TgBot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}
	return sent.MessageID, nil
}

// Bad Request descriptions Telegram returns when it cannot use a photo URL.
var photoRejections = []string{
	"wrong file identifier",
	"failed to get http url content",
	"wrong type of the web page content",
	"wrong remote file",
	"photo_invalid_dimensions",
	"image_process_failed",
}

func isPhotoRejected(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	for _, r := range photoRejections {
		if strings.Contains(msg, r) {
			return true
		}
	}
	return false
}
