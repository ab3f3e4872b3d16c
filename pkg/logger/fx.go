package logger

import (
	"context"

	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"go.uber.org/fx"
)

var FxOption = fx.Annotate(
	func(lc fx.Lifecycle, cfg *config.Config) *Impl {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				Flush()
				return nil
			},
		})
		return New(
			Opts{
				Env:       cfg.App.Env,
				SentryDSN: cfg.App.SentryUrl,
			},
		)
	},
	fx.As(new(Logger)),
)
