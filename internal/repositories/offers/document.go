package offers

import (
	"context"
	"slices"
	"sync"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/internal/storage"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
)

type document struct {
	ByID   map[string]domain.Offer `json:"byId"`
	Recent []string                `json:"recent"`
}

type Document struct {
	backend storage.Backend
	limits  Limits
	logger  logger.Logger

	mu     sync.RWMutex
	byID   map[string]domain.Offer
	recent []string
	window map[string]struct{}
}

var _ Repository = (*Document)(nil)

func New(ctx context.Context, backend storage.Backend, limits Limits, log logger.Logger) *Document {
	d := &Document{
		backend: backend,
		limits:  limits,
		logger:  log.WithComponent("OffersCacheRepo"),
		byID:    make(map[string]domain.Offer),
		window:  make(map[string]struct{}),
	}

	var doc document
	if _, err := storage.LoadJSON(ctx, backend, DocumentName, &doc); err != nil {
		d.logger.Warn("Could not read offers cache, starting empty", "error", err)
		return d
	}
	if doc.ByID != nil {
		d.byID = doc.ByID
	}
	for _, id := range doc.Recent {
		if _, dup := d.window[id]; dup {
			continue
		}
		d.recent = append(d.recent, id)
		d.window[id] = struct{}{}
	}
	d.trimLocked()
	d.logger.Info("Loaded offers cache", "recent", len(d.recent), "entries", len(d.byID))
	return d
}

func (d *Document) Put(ctx context.Context, offers []domain.Offer) error {
	if len(offers) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, o := range offers {
		d.byID[o.ID] = o
		if _, ok := d.window[o.ID]; ok {
			d.recent = slices.DeleteFunc(d.recent, func(x string) bool { return x == o.ID })
		}
		d.recent = slices.Insert(d.recent, 0, o.ID)
		d.window[o.ID] = struct{}{}
	}
	d.trimLocked()

	return storage.SaveJSON(ctx, d.backend, DocumentName, document{ByID: d.byID, Recent: d.recent})
}

func (d *Document) Get(id string) (domain.Offer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, ok := d.window[id]; !ok {
		return domain.Offer{}, false
	}
	o, ok := d.byID[id]
	return o, ok
}

func (d *Document) Recent(n int) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n > len(d.recent) {
		n = len(d.recent)
	}
	if n <= 0 {
		return nil
	}
	return slices.Clone(d.recent[:n])
}

func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.recent)
}

// trimLocked cuts the recency list and drops entries that fell out of it,
// keeping the persisted document bounded.
func (d *Document) trimLocked() {
	if d.limits.Max <= 0 || len(d.recent) <= d.limits.Max {
		return
	}
	for _, id := range d.recent[d.limits.Keep:] {
		delete(d.window, id)
		delete(d.byID, id)
	}
	d.recent = slices.Clone(d.recent[:d.limits.Keep])
}
