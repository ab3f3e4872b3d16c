package storage

import (
	"context"
	"fmt"

	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Logger logger.Logger
	Config *config.Config
}

// New opens the backend selected by STORAGE_DRIVER.
func New(opts Opts) (Backend, error) {
	backend, err := Open(context.Background(), opts.Config)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("Storage backend ready", "driver", opts.Config.Storage.Driver)

	opts.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return backend.Close()
		},
	})
	return backend, nil
}

func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverFile:
		return NewFileBackend(cfg.Storage.Dir)
	case config.StorageDriverSQLite:
		return OpenSQLite(cfg.Storage.SQLitePath)
	case config.StorageDriverPostgres:
		return OpenPostgres(ctx, cfg.GetDSN())
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
