package destinations

import (
	"context"
	"sort"
	"sync"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/internal/storage"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
)

type Document struct {
	backend storage.Backend
	logger  logger.Logger

	mu       sync.RWMutex
	channels map[string]string
}

var _ Repository = (*Document)(nil)

func New(ctx context.Context, backend storage.Backend, log logger.Logger) *Document {
	d := &Document{
		backend:  backend,
		logger:   log.WithComponent("DestinationsRepo"),
		channels: make(map[string]string),
	}

	var doc map[string]string
	if _, err := storage.LoadJSON(ctx, backend, DocumentName, &doc); err != nil {
		d.logger.Warn("Could not read guild channel map, starting empty", "error", err)
		return d
	}
	for community, channel := range doc {
		if community == "" || channel == "" {
			continue
		}
		d.channels[community] = channel
	}
	d.logger.Info("Loaded destinations", "count", len(d.channels))
	return d
}

func (d *Document) Get(communityID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	channel, ok := d.channels[communityID]
	return channel, ok
}

func (d *Document) Set(ctx context.Context, communityID, channelID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[communityID] = channelID
	return d.saveLocked(ctx)
}

func (d *Document) Delete(ctx context.Context, communityID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.channels[communityID]; !ok {
		return false, nil
	}
	delete(d.channels, communityID)
	return true, d.saveLocked(ctx)
}

func (d *Document) All() []domain.Destination {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.Destination, 0, len(d.channels))
	for community, channel := range d.channels {
		out = append(out, domain.Destination{CommunityID: community, ChannelID: channel})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommunityID < out[j].CommunityID })
	return out
}

func (d *Document) saveLocked(ctx context.Context) error {
	return storage.SaveJSON(ctx, d.backend, DocumentName, d.channels)
}
