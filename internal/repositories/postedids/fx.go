package postedids

import (
	"context"

	"github.com/orgball2608/giveaway-telegram-bot/internal/storage"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Module("posted_ids_repository",
	fx.Provide(
		fx.Annotate(
			func(backend storage.Backend, cfg *config.Config, log logger.Logger) *Document {
				return New(context.Background(), backend, Limits{Max: cfg.Limits.PostedMax, Keep: cfg.Limits.PostedKeep}, log)
			},
			fx.As(new(Repository)),
		),
	),
)
