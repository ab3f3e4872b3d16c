package pollerimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/giveaway-telegram-bot/internal/distributor"
	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/internal/feed"
	"github.com/orgball2608/giveaway-telegram-bot/internal/poller"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

const jobName = "giveaway-poll"

type Opts struct {
	fx.In

	Feed        feed.Client
	Distributor distributor.Client
	Config      *config.Config
	Logger      logger.Logger
}

type PollerImpl struct {
	feed        feed.Client
	distributor distributor.Client
	config      *config.Config
	logger      logger.Logger

	running atomic.Bool

	mu        sync.Mutex
	last      domain.BatchReport
	hasLast   bool
	scheduler gocron.Scheduler
	cancel    context.CancelFunc
}

var _ poller.Client = (*PollerImpl)(nil)

func New(opts Opts) *PollerImpl {
	return &PollerImpl{
		feed:        opts.Feed,
		distributor: opts.Distributor,
		config:      opts.Config,
		logger:      opts.Logger.WithComponent("Poller"),
	}
}

func (p *PollerImpl) Start() error {
	loc := p.config.Location()

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	_, err = scheduler.NewJob(
		gocron.CronJob(p.config.Schedule.Cron, false),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			p.tick(ctx)
		}),
		gocron.WithName(jobName),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule %s: %w", jobName, err)
	}

	p.mu.Lock()
	p.scheduler = scheduler
	p.cancel = cancel
	p.mu.Unlock()

	scheduler.Start()
	p.logger.Info("Scheduler started",
		"cron", p.config.Schedule.Cron,
		"timezone", loc.String(),
		"next_run", p.nextRun(time.Now()),
	)
	return nil
}

// Stop cancels an in-flight tick and waits for the scheduler to shut down.
func (p *PollerImpl) Stop() error {
	p.mu.Lock()
	scheduler, cancel := p.scheduler, p.cancel
	p.scheduler, p.cancel = nil, nil
	p.mu.Unlock()

	if scheduler == nil {
		return nil
	}
	cancel()
	p.logger.Info("Stopping scheduler")
	if err := scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	return nil
}

func (p *PollerImpl) tick(ctx context.Context) {
	_, err := p.RunOnce(ctx)
	switch {
	case errors.Is(err, poller.ErrTickInProgress):
		p.logger.Warn("Previous tick still running, skipping this one")
	case errors.Is(err, distributor.ErrNoDestinations):
		p.logger.Warn("No destinations configured, nothing was sent")
	case err != nil:
		p.logger.Error("Tick failed", "error", err)
	}
	p.logger.Debug("Next tick scheduled", "next_run", p.nextRun(time.Now()))
}

func (p *PollerImpl) RunOnce(ctx context.Context) (report domain.BatchReport, err error) {
	if !p.running.CompareAndSwap(false, true) {
		return domain.BatchReport{}, poller.ErrTickInProgress
	}
	defer p.running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Tick panicked", "panic", r)
			err = fmt.Errorf("tick panicked: %v", r)
		}
	}()

	if timeout := p.config.Schedule.TickTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	offers := p.feed.Fetch(ctx, p.config.Feed.Platform, p.config.Feed.Type)
	report, err = p.distributor.BatchDeliver(ctx, offers)
	p.record(report)

	p.logger.Info("Tick finished",
		"run_id", report.RunID,
		"fetched", report.Fetched,
		"new", report.New,
		"destinations", report.Destinations,
		"sent", report.Sent,
		"failed", report.Failed,
		"duration", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond).String(),
	)
	return report, err
}

func (p *PollerImpl) LastReport() (domain.BatchReport, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.hasLast
}

func (p *PollerImpl) record(report domain.BatchReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = report
	p.hasLast = true
}

func (p *PollerImpl) nextRun(after time.Time) string {
	schedule, err := cron.ParseStandard(p.config.Schedule.Cron)
	if err != nil {
		return "unknown"
	}
	return schedule.Next(after.In(p.config.Location())).Format(time.RFC3339)
}
