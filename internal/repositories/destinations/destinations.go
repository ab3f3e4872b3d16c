package destinations

import (
	"context"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
)

const DocumentName = "guild_channel_map"

// Repository maps a community chat to the single chat it posts offers into.
type Repository interface {
	Get(communityID string) (string, bool)
	Set(ctx context.Context, communityID, channelID string) error
	// Delete reports whether a mapping existed.
	Delete(ctx context.Context, communityID string) (bool, error)
	// All returns every mapping ordered by community id.
	All() []domain.Destination
}
