package postedids

import (
	"context"
	"slices"
	"sync"

	"github.com/orgball2608/giveaway-telegram-bot/internal/storage"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
)

type document struct {
	PostedIDs []string `json:"postedIds"`
}

// Document keeps the posted ids in memory and rewrites the whole document on
// every change.
type Document struct {
	backend storage.Backend
	limits  Limits
	logger  logger.Logger

	mu    sync.Mutex
	ids   []string
	index map[string]struct{}
}

var _ Repository = (*Document)(nil)

// New loads the stored set. An unreadable document is logged and replaced by
// an empty set on the next write.
func New(ctx context.Context, backend storage.Backend, limits Limits, log logger.Logger) *Document {
	d := &Document{
		backend: backend,
		limits:  limits,
		logger:  log.WithComponent("PostedIDsRepo"),
		index:   make(map[string]struct{}),
	}

	var doc document
	if _, err := storage.LoadJSON(ctx, backend, DocumentName, &doc); err != nil {
		d.logger.Warn("Could not read posted ids, starting empty", "error", err)
		return d
	}
	for _, id := range doc.PostedIDs {
		if _, ok := d.index[id]; ok {
			continue
		}
		d.ids = append(d.ids, id)
		d.index[id] = struct{}{}
	}
	d.trimLocked()
	d.logger.Info("Loaded posted ids", "count", len(d.ids))
	return d
}

func (d *Document) Contains(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.index[id]
	return ok
}

func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ids)
}

// Mark appends id, or moves it to the newest position if it is already known,
// so ids that keep being delivered stay inside the window.
func (d *Document) Mark(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.index[id]; ok {
		if d.ids[len(d.ids)-1] == id {
			return nil
		}
		d.ids = slices.DeleteFunc(d.ids, func(x string) bool { return x == id })
	}
	d.ids = append(d.ids, id)
	d.index[id] = struct{}{}
	d.trimLocked()

	return storage.SaveJSON(ctx, d.backend, DocumentName, document{PostedIDs: d.ids})
}

func (d *Document) trimLocked() {
	if d.limits.Max <= 0 || len(d.ids) <= d.limits.Max {
		return
	}
	drop := d.ids[:len(d.ids)-d.limits.Keep]
	for _, id := range drop {
		delete(d.index, id)
	}
	d.ids = slices.Clone(d.ids[len(d.ids)-d.limits.Keep:])
}
