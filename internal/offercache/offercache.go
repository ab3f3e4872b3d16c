// Package offercache is the entry point for everything that reads or writes
// cached offers. It owns the list size bounds so every caller gets the same
// clamping.
package offercache

import (
	"context"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/offers"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

const (
	MinListCount     = 1
	MaxListCount     = 25
	DefaultListCount = 10
)

// ClampCount maps a requested list size into [MinListCount, MaxListCount].
// A missing count (0) uses DefaultListCount.
func ClampCount(n int) int {
	if n == 0 {
		n = DefaultListCount
	}
	return min(max(n, MinListCount), MaxListCount)
}

// Entry is one row of a recent-offers listing. Offer is nil when the id is
// still in the recency list but its data is gone.
type Entry struct {
	ID    string
	Offer *domain.Offer
}

type Opts struct {
	fx.In

	Repo   offers.Repository
	Logger logger.Logger
}

type Manager struct {
	repo   offers.Repository
	logger logger.Logger
}

func New(opts Opts) *Manager {
	return &Manager{
		repo:   opts.Repo,
		logger: opts.Logger.WithComponent("OfferCache"),
	}
}

// Cache stores offers regardless of whether they were ever delivered.
// Re-caching an offer only moves it to the front.
func (m *Manager) Cache(ctx context.Context, list []domain.Offer) error {
	if err := m.repo.Put(ctx, list); err != nil {
		m.logger.Error("Failed to persist offers cache", "count", len(list), "error", err)
		return err
	}
	m.logger.Debug("Cached offers", "count", len(list), "recent", m.repo.Len())
	return nil
}

func (m *Manager) Lookup(id string) (domain.Offer, bool) {
	return m.repo.Get(id)
}

// Recent returns the newest cached entries, clamping count first.
func (m *Manager) Recent(count int) []Entry {
	ids := m.repo.Recent(ClampCount(count))
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e := Entry{ID: id}
		if o, ok := m.repo.Get(id); ok {
			e.Offer = &o
		}
		entries = append(entries, e)
	}
	return entries
}
