package offers

import (
	"context"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
)

const DocumentName = "offers_cache"

// Limits bound the recency list: past Max ids it is cut to the Keep newest.
type Limits struct {
	Max  int
	Keep int
}

func DefaultLimits() Limits {
	return Limits{Max: 1000, Keep: 500}
}

// Repository caches every fetched offer so it can be resent later.
type Repository interface {
	// Put upserts offers, moves each to the front of the recency list and
	// persists the cache once.
	Put(ctx context.Context, offers []domain.Offer) error
	// Get only finds offers inside the retained recency window.
	Get(id string) (domain.Offer, bool)
	// Recent returns up to n ids, newest first.
	Recent(n int) []string
	Len() int
}
