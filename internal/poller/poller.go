package poller

import (
	"context"
	"errors"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
)

// ErrTickInProgress is returned by RunOnce while another tick is running.
var ErrTickInProgress = errors.New("tick already in progress")

type Client interface {
	// Start schedules ticks on the configured cron expression, running the
	// first one immediately.
	Start() error
	Stop() error
	// RunOnce fetches the feed and distributes it. Ticks never overlap.
	RunOnce(ctx context.Context) (domain.BatchReport, error)
	// LastReport returns the report of the most recent finished tick.
	LastReport() (domain.BatchReport, bool)
}
