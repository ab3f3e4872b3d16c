package telegramimpl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/internal/telegram"
)

const (
	statusCreator       = "creator"
	statusAdministrator = "administrator"
	statusMember        = "member"
	statusRestricted    = "restricted"
)

func (tg *TelegramImpl) ResolveChat(ctx context.Context, ref string) (domain.Chat, error) {
	if err := ctx.Err(); err != nil {
		return domain.Chat{}, err
	}

	cfg, err := chatConfig(ref)
	if err != nil {
		return domain.Chat{}, err
	}

	chat, err := tg.TgBot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: cfg})
	if err != nil {
		if isChatNotFound(err) {
			return domain.Chat{}, fmt.Errorf("%w: %s", telegram.ErrChatNotFound, ref)
		}
		return domain.Chat{}, fmt.Errorf("get chat %s: %w", ref, err)
	}

	return domain.Chat{
		ID:       chat.ID,
		Type:     chat.Type,
		Title:    chat.Title,
		Username: chat.UserName,
	}, nil
}

func (tg *TelegramImpl) BotPermissions(ctx context.Context, chat domain.Chat) (domain.Permissions, error) {
	if err := ctx.Err(); err != nil {
		return domain.Permissions{}, err
	}

	member, err := tg.TgBot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chat.ID, UserID: tg.TgBot.Self.ID},
	})
	if err != nil {
		return domain.Permissions{}, fmt.Errorf("get bot membership in %d: %w", chat.ID, err)
	}

	// Plain members of a group inherit the chat's default permissions.
	var defaults *tgbotapi.ChatPermissions
	if member.Status == statusMember && chat.Type != domain.ChatTypeChannel {
		full, err := tg.TgBot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: chat.ID}})
		if err != nil {
			return domain.Permissions{}, fmt.Errorf("get chat permissions for %d: %w", chat.ID, err)
		}
		defaults = full.Permissions
	}

	return permissions(chat.Type, member, defaults), nil
}

func (tg *TelegramImpl) Member(ctx context.Context, chatID, userID int64) (domain.Member, error) {
	if err := ctx.Err(); err != nil {
		return domain.Member{}, err
	}

	member, err := tg.TgBot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return domain.Member{}, fmt.Errorf("get member %d in %d: %w", userID, chatID, err)
	}

	return domain.Member{Status: member.Status, CanChangeInfo: member.CanChangeInfo}, nil
}

// permissions maps a bot membership onto the capabilities delivery needs.
func permissions(chatType string, m tgbotapi.ChatMember, defaults *tgbotapi.ChatPermissions) domain.Permissions {
	switch m.Status {
	case statusCreator:
		return domain.Permissions{CanView: true, CanSend: true, CanSendMedia: true}
	case statusAdministrator:
		if chatType == domain.ChatTypeChannel {
			return domain.Permissions{CanView: true, CanSend: m.CanPostMessages, CanSendMedia: m.CanPostMessages}
		}
		return domain.Permissions{CanView: true, CanSend: true, CanSendMedia: true}
	case statusMember:
		if chatType == domain.ChatTypeChannel {
			return domain.Permissions{CanView: true}
		}
		if defaults == nil {
			return domain.Permissions{CanView: true, CanSend: true, CanSendMedia: true}
		}
		return domain.Permissions{
			CanView:      true,
			CanSend:      defaults.CanSendMessages,
			CanSendMedia: defaults.CanSendMessages && defaults.CanSendMediaMessages,
		}
	case statusRestricted:
		return domain.Permissions{
			CanView:      m.IsMember,
			CanSend:      m.IsMember && m.CanSendMessages,
			CanSendMedia: m.IsMember && m.CanSendMessages && m.CanSendMediaMessages,
		}
	default:
		return domain.Permissions{}
	}
}

// chatConfig accepts "-100123", "@name" or a bare "name".
func chatConfig(ref string) (tgbotapi.ChatConfig, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return tgbotapi.ChatConfig{}, fmt.Errorf("%w: empty reference", telegram.ErrChatNotFound)
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return tgbotapi.ChatConfig{ChatID: id}, nil
	}
	if !strings.HasPrefix(ref, "@") {
		ref = "@" + ref
	}
	return tgbotapi.ChatConfig{SuperGroupUsername: ref}, nil
}

func isChatNotFound(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Message)
		return strings.Contains(msg, "chat not found") || strings.Contains(msg, "username_invalid")
	}
	return false
}
