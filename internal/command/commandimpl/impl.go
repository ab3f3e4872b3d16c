package commandimpl

import (
	"github.com/orgball2608/giveaway-telegram-bot/internal/command"
	"github.com/orgball2608/giveaway-telegram-bot/internal/distributor"
	"github.com/orgball2608/giveaway-telegram-bot/internal/offercache"
	"github.com/orgball2608/giveaway-telegram-bot/internal/ratelimit"
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/destinations"
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/postedids"
	"github.com/orgball2608/giveaway-telegram-bot/internal/telegram"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Telegram     telegram.Client
	Distributor  distributor.Client
	Cache        *offercache.Manager
	Posted       postedids.Repository
	Destinations destinations.Repository
	Limiter      ratelimit.Limiter
	Logger       logger.Logger
	Config       *config.Config
}

type CommandImpl struct {
	Telegram     telegram.Client
	Distributor  distributor.Client
	Cache        *offercache.Manager
	Posted       postedids.Repository
	Destinations destinations.Repository
	Limiter      ratelimit.Limiter
	Logger       logger.Logger
	Config       *config.Config
}

func New(opts Opts) *CommandImpl {
	return &CommandImpl{
		Telegram:     opts.Telegram,
		Distributor:  opts.Distributor,
		Cache:        opts.Cache,
		Posted:       opts.Posted,
		Destinations: opts.Destinations,
		Limiter:      opts.Limiter,
		Logger:       opts.Logger.WithComponent("Commands"),
		Config:       opts.Config,
	}
}

var _ command.Client = (*CommandImpl)(nil)
