package app

import (
	"context"
	"time"

	"github.com/orgball2608/giveaway-telegram-bot/internal/command"
	"github.com/orgball2608/giveaway-telegram-bot/internal/command/commandimpl"
	"github.com/orgball2608/giveaway-telegram-bot/internal/distributor"
	"github.com/orgball2608/giveaway-telegram-bot/internal/distributor/distributorimpl"
	"github.com/orgball2608/giveaway-telegram-bot/internal/feed"
	"github.com/orgball2608/giveaway-telegram-bot/internal/feed/feedimpl"
	"github.com/orgball2608/giveaway-telegram-bot/internal/offercache"
	"github.com/orgball2608/giveaway-telegram-bot/internal/poller"
	"github.com/orgball2608/giveaway-telegram-bot/internal/poller/pollerimpl"
	"github.com/orgball2608/giveaway-telegram-bot/internal/ratelimit"
	repositories "github.com/orgball2608/giveaway-telegram-bot/internal/repositories/fx"
	"github.com/orgball2608/giveaway-telegram-bot/internal/storage"
	"github.com/orgball2608/giveaway-telegram-bot/internal/telegram"
	"github.com/orgball2608/giveaway-telegram-bot/internal/telegram/telegramimpl"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

const commandRestartDelay = 5 * time.Second

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		storage.New,
		offercache.New,
	),
	fx.Provide(
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		),
		fx.Annotate(
			feedimpl.New,
			fx.As(new(feed.Client)),
		),
		fx.Annotate(
			distributorimpl.New,
			fx.As(new(distributor.Client)),
		),
		fx.Annotate(
			pollerimpl.New,
			fx.As(new(poller.Client)),
		),
		fx.Annotate(
			commandimpl.New,
			fx.As(new(command.Client)),
		),
	),
	repositories.Module,
	ratelimit.Module,
	fx.Invoke(startHealthServer),
	fx.Invoke(run),
)

func run(lc fx.Lifecycle, log logger.Logger, tgClient telegram.Client, pollerClient poller.Client, cmdClient command.Client) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := tgClient.RegisterCommands(commandimpl.Commands()); err != nil {
				log.Warn("Command registration failed, commands still work when typed", "error", err)
			}

			if err := pollerClient.Start(); err != nil {
				return err
			}

			go handleCommands(ctx, log, cmdClient)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return pollerClient.Stop()
		},
	})
}

// handleCommands restarts the update loop until ctx is done.
func handleCommands(ctx context.Context, log logger.Logger, cmdClient command.Client) {
	for {
		err := cmdClient.HandleCommand(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Error("Command handler stopped, restarting", "error", err, "delay", commandRestartDelay.String())

		select {
		case <-ctx.Done():
			return
		case <-time.After(commandRestartDelay):
		}
	}
}
