package feed

import (
	"context"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
)

// Client pulls giveaways from the external feed.
type Client interface {
	// Fetch never fails: transport errors, timeouts and malformed responses
	// are logged and yield an empty slice.
	Fetch(ctx context.Context, platform, category string) []domain.Offer
}
