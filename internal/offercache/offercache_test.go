package offercache

import (
	"context"
	"fmt"
	"testing"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/offers"
	"github.com/orgball2608/giveaway-telegram-bot/internal/storage"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
)

func TestClampCount(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultListCount},
		{-3, 1},
		{1, 1},
		{25, 25},
		{26, 25},
		{1000, 25},
	}
	for _, tt := range tests {
		if got := ClampCount(tt.in); got != tt.want {
			t.Errorf("ClampCount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	backend, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	log := logger.NewNop()
	repo := offers.New(context.Background(), backend, offers.DefaultLimits(), log)
	return New(Opts{Repo: repo, Logger: log})
}

func TestRecentClampsAndResolves(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	var list []domain.Offer
	for i := 0; i < 40; i++ {
		list = append(list, domain.Offer{ID: fmt.Sprintf("gamerpower_%d", i), Title: "t"})
	}
	if err := m.Cache(ctx, list); err != nil {
		t.Fatal(err)
	}

	if got := len(m.Recent(26)); got != MaxListCount {
		t.Errorf("len(Recent(26)) = %d, want %d", got, MaxListCount)
	}
	if got := len(m.Recent(0)); got != DefaultListCount {
		t.Errorf("len(Recent(0)) = %d, want %d", got, DefaultListCount)
	}

	entries := m.Recent(1)
	if len(entries) != 1 || entries[0].ID != "gamerpower_39" || entries[0].Offer == nil {
		t.Fatalf("Recent(1) = %+v", entries)
	}
}

func TestLookupAfterRecache(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)
	o := domain.Offer{ID: "gamerpower_5", Title: "Five"}

	if err := m.Cache(ctx, []domain.Offer{o}); err != nil {
		t.Fatal(err)
	}
	if err := m.Cache(ctx, []domain.Offer{o}); err != nil {
		t.Fatal(err)
	}
	got, ok := m.Lookup("gamerpower_5")
	if !ok || got.Title != "Five" {
		t.Fatalf("Lookup = (%+v, %v)", got, ok)
	}
	if len(m.Recent(25)) != 1 {
		t.Fatalf("re-caching must not duplicate ids")
	}
}
