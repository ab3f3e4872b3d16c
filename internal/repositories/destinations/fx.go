package destinations

import (
	"context"

	"github.com/orgball2608/giveaway-telegram-bot/internal/storage"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Module("destinations_repository",
	fx.Provide(
		fx.Annotate(
			func(backend storage.Backend, log logger.Logger) *Document {
				return New(context.Background(), backend, log)
			},
			fx.As(new(Repository)),
		),
	),
)
