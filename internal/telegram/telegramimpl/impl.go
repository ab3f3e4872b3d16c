package telegramimpl

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/giveaway-telegram-bot/internal/telegram"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type TelegramImpl struct {
	TgBot  *tgbotapi.BotAPI
	Logger logger.Logger
	Config *config.Config
}

var _ telegram.Client = (*TelegramImpl)(nil)

// New logs the bot in. NewBotAPI calls getMe, so a bad token fails here and
// aborts startup.
func New(opts Opts) (*TelegramImpl, error) {
	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		opts.Logger.Error("Telegram login failed", "error", err)
		return nil, fmt.Errorf("telegram login: %w", err)
	}

	log := opts.Logger.WithComponent("Telegram")
	log.Info("Logged in to Telegram", "bot", tgBot.Self.UserName, "bot_id", tgBot.Self.ID)

	return &TelegramImpl{
		TgBot:  tgBot,
		Logger: log,
		Config: opts.Config,
	}, nil
}

func (tg *TelegramImpl) GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return tg.TgBot.GetUpdatesChan(u)
}

func (tg *TelegramImpl) StopReceivingUpdates() {
	tg.TgBot.StopReceivingUpdates()
}

// RegisterCommands publishes the command menu. It is skipped when CLIENT_ID
// is not configured.
func (tg *TelegramImpl) RegisterCommands(commands []tgbotapi.BotCommand) error {
	if tg.Config.Telegram.ClientID == "" {
		tg.Logger.Warn("CLIENT_ID is not set, skipping command registration")
		return nil
	}

	if _, err := tg.TgBot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	tg.Logger.Info("Registered bot commands", "count", len(commands), "client_id", tg.Config.Telegram.ClientID)
	return nil
}
