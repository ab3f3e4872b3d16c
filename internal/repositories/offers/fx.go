package offers

import (
	"context"

	"github.com/orgball2608/giveaway-telegram-bot/internal/storage"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Module("offers_repository",
	fx.Provide(
		fx.Annotate(
			func(backend storage.Backend, cfg *config.Config, log logger.Logger) *Document {
				return New(context.Background(), backend, Limits{Max: cfg.Limits.CacheMax, Keep: cfg.Limits.CacheKeep}, log)
			},
			fx.As(new(Repository)),
		),
	),
)
