package distributor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
)

// Reason classifies why a single delivery failed.
type Reason string

const (
	ReasonChannelNotFound    Reason = "channel_not_found"
	ReasonNotTextCapable     Reason = "not_text_capable"
	ReasonMissingPermissions Reason = "missing_permissions"
	ReasonSendFailed         Reason = "send_failed"
)

// ErrNoDestinations means no community has a mapping and no fallback
// channel is configured.
var ErrNoDestinations = errors.New("no destinations configured")

// DeliveryError is the structured result of a failed DeliverOne.
type DeliveryError struct {
	Reason    Reason
	ChannelID string
	// Missing lists absent capabilities for ReasonMissingPermissions.
	Missing []string
	Err     error
}

func (e *DeliveryError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", e.Reason, e.ChannelID)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&sb, " (missing %s)", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason, defaulting to send_failed.
func ReasonOf(err error) Reason {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Reason
	}
	return ReasonSendFailed
}

type Client interface {
	// BatchDeliver caches offers, then sends the ones never posted before to
	// every destination in turn.
	BatchDeliver(ctx context.Context, offers []domain.Offer) (domain.BatchReport, error)
	// DeliverOne sends one offer to one channel. Failures are *DeliveryError
	// unless ctx ended first.
	DeliverOne(ctx context.Context, channelID string, offer domain.Offer) (domain.Delivery, error)
	// Destinations returns the mapped channels, or the fallback channel when
	// nothing is mapped.
	Destinations() []domain.Destination
}
