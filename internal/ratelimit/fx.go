package ratelimit

import (
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"go.uber.org/fx"
)

var Module = fx.Module("ratelimit",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.Config) *TokenBucketPacer {
				return NewPacer(cfg.Delivery.SendInterval, cfg.Delivery.SendBurst)
			},
			fx.As(new(Pacer)),
		),
		fx.Annotate(
			func(cfg *config.Config) *InMemoryLimiter {
				return NewInMemoryLimiter(1, cfg.Command.RatePer, cfg.Command.Burst)
			},
			fx.As(new(Limiter)),
		),
	),
)
