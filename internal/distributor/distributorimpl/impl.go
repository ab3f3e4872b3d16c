package distributorimpl

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/giveaway-telegram-bot/internal/distributor"
	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/internal/offercache"
	"github.com/orgball2608/giveaway-telegram-bot/internal/ratelimit"
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/destinations"
	"github.com/orgball2608/giveaway-telegram-bot/internal/repositories/postedids"
	"github.com/orgball2608/giveaway-telegram-bot/internal/telegram"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/config"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Telegram     telegram.Client
	Cache        *offercache.Manager
	Posted       postedids.Repository
	Destinations destinations.Repository
	Pacer        ratelimit.Pacer
	Config       *config.Config
	Logger       logger.Logger
}

type DistributorImpl struct {
	telegram        telegram.Client
	cache           *offercache.Manager
	posted          postedids.Repository
	destinations    destinations.Repository
	pacer           ratelimit.Pacer
	fallbackChannel string
	logger          logger.Logger
	now             func() time.Time
}

var _ distributor.Client = (*DistributorImpl)(nil)

func New(opts Opts) *DistributorImpl {
	return &DistributorImpl{
		telegram:        opts.Telegram,
		cache:           opts.Cache,
		posted:          opts.Posted,
		destinations:    opts.Destinations,
		pacer:           opts.Pacer,
		fallbackChannel: opts.Config.Telegram.FallbackChannel,
		logger:          opts.Logger.WithComponent("Distributor"),
		now:             time.Now,
	}
}

func (d *DistributorImpl) BatchDeliver(ctx context.Context, offers []domain.Offer) (domain.BatchReport, error) {
	report := domain.BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: d.now().UTC(),
		Fetched:   len(offers),
	}
	log := d.logger
	finish := func(note string, err error) (domain.BatchReport, error) {
		report.Note = note
		report.FinishedAt = d.now().UTC()
		return report, err
	}

	// Cache errors are logged by the cache and do not stop delivery.
	_ = d.cache.Cache(ctx, offers)

	fresh := d.newOffers(offers)
	report.New = len(fresh)
	if len(fresh) == 0 {
		return finish("no new offers", nil)
	}

	// Mappings added after this point wait for the next tick.
	dests := d.Destinations()
	if len(dests) == 0 {
		log.Warn("New offers found but no destinations configured", "run_id", report.RunID, "new", len(fresh))
		return finish(distributor.ErrNoDestinations.Error(), distributor.ErrNoDestinations)
	}
	report.Destinations = len(dests)

	for _, dest := range dests {
		for i, offer := range fresh {
			if err := ctx.Err(); err != nil {
				log.Warn("Batch interrupted", "run_id", report.RunID, "sent", report.Sent, "error", err)
				return finish("interrupted", err)
			}

			delivery, err := d.DeliverOne(ctx, dest.ChannelID, offer)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return finish("interrupted", ctxErr)
				}
				reason := distributor.ReasonOf(err)
				report.AddFailure(string(reason))
				log.Warn("Delivery failed",
					"run_id", report.RunID,
					"community", dest.CommunityID,
					"channel", dest.ChannelID,
					"offer", offer.ID,
					"reason", reason,
					"error", err,
				)
				if unreachable(reason) {
					rest := len(fresh) - i - 1
					for range rest {
						report.AddFailure(string(reason))
					}
					log.Warn("Skipping destination for the rest of the batch",
						"run_id", report.RunID,
						"channel", dest.ChannelID,
						"reason", reason,
						"skipped", rest,
					)
					break
				}
				continue
			}

			report.Sent++
			if err := d.posted.Mark(ctx, offer.ID); err != nil {
				log.Error("Failed to persist posted id", "offer", offer.ID, "error", err)
			}
			log.Debug("Delivered offer", "channel", dest.ChannelID, "offer", offer.ID, "message_id", delivery.MessageID)
		}
	}

	return finish("", nil)
}

// newOffers keeps fetch order and drops ids already posted or repeated
// within the same fetch.
func (d *DistributorImpl) newOffers(offers []domain.Offer) []domain.Offer {
	seen := make(map[string]struct{}, len(offers))
	var fresh []domain.Offer
	for _, o := range offers {
		if _, dup := seen[o.ID]; dup {
			continue
		}
		seen[o.ID] = struct{}{}
		if d.posted.Contains(o.ID) {
			continue
		}
		fresh = append(fresh, o)
	}
	return fresh
}

// unreachable reports reasons that hold for every offer sent to the same
// destination in a batch.
func unreachable(reason distributor.Reason) bool {
	return reason == distributor.ReasonChannelNotFound || reason == distributor.ReasonNotTextCapable
}

func (d *DistributorImpl) Destinations() []domain.Destination {
	dests := d.destinations.All()
	if len(dests) == 0 && d.fallbackChannel != "" {
		return []domain.Destination{{ChannelID: d.fallbackChannel, Fallback: true}}
	}
	return dests
}

// isFallback reports whether channelID is the configured fallback channel.
func (d *DistributorImpl) isFallback(channelID string) bool {
	return d.fallbackChannel != "" && strings.TrimSpace(channelID) == strings.TrimSpace(d.fallbackChannel)
}

// DeliverOne waits for the pacer before any API call, so failed attempts are
// spaced like successful ones.
func (d *DistributorImpl) DeliverOne(ctx context.Context, channelID string, offer domain.Offer) (domain.Delivery, error) {
	if err := d.pacer.Wait(ctx); err != nil {
		return domain.Delivery{}, err
	}

	chat, err := d.telegram.ResolveChat(ctx, channelID)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Delivery{}, ctx.Err()
		}
		return domain.Delivery{}, &distributor.DeliveryError{
			Reason:    distributor.ReasonChannelNotFound,
			ChannelID: channelID,
			Err:       err,
		}
	}

	// The fallback may be an operator's private chat with the bot.
	direct := chat.Type == domain.ChatTypePrivate && d.isFallback(channelID)
	if !chat.TextCapable() && !direct {
		return domain.Delivery{}, &distributor.DeliveryError{
			Reason:    distributor.ReasonNotTextCapable,
			ChannelID: channelID,
		}
	}

	withMedia := true
	if !direct {
		perms, err := d.telegram.BotPermissions(ctx, chat)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return domain.Delivery{}, ctx.Err()
			}
			d.logger.Warn("Could not read bot permissions, sending anyway", "channel", channelID, "error", err)
		case len(perms.Missing()) > 0:
			return domain.Delivery{}, &distributor.DeliveryError{
				Reason:    distributor.ReasonMissingPermissions,
				ChannelID: channelID,
				Missing:   perms.Missing(),
			}
		case !perms.CanSendMedia:
			d.logger.Warn("Bot cannot send media, using text only",
				"channel", channelID,
				"missing", domain.CapabilitySendMedia,
			)
			withMedia = false
		}
	}

	n := render(offer, withMedia, d.now())

	messageID, err := d.telegram.SendNotification(ctx, chat.ID, n)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Delivery{}, err
		}
		return domain.Delivery{}, &distributor.DeliveryError{
			Reason:    distributor.ReasonSendFailed,
			ChannelID: channelID,
			Err:       err,
		}
	}

	return domain.Delivery{ChannelID: channelID, ChatID: chat.ID, MessageID: messageID}, nil
}
