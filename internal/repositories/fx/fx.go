package fx

import (
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/destinations"
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/offers"
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/postedids"
	"go.uber.org/fx"
)

var Module = fx.Options(
	postedids.Module,
	destinations.Module,
	offers.Module,
)
