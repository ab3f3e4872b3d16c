package commandimpl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/orgball2608/giveaway-telegram-bot/internal/command"
	"github.com/orgball2608/giveaway-telegram-bot/internal/distributor"
	"github.com/orgball2608/giveaway-telegram-bot/internal/offercache"
	pkgerrors "github.com/orgball2608/giveaway-telegram-bot/pkg/errors"
)

const missingData = "(missing data)"

func (c *CommandImpl) ListRecent(_ context.Context, inv command.Invocation) (string, error) {
	count := 0
	if fields := strings.Fields(inv.Args); len(fields) > 0 {
		n, err := parseCount(fields[0])
		if err != nil {
			return "", pkgerrors.WrapWithCode(pkgerrors.ErrInvalidInput, command.CodeInvalidInput,
				fmt.Sprintf("Count must be a whole number between %d and %d.", offercache.MinListCount, offercache.MaxListCount))
		}
		count = n
	}

	entries := c.Cache.Recent(count)
	if len(entries) == 0 {
		return "No offers cached yet. They show up here after the first feed check.", nil
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🕹 Recent offers (%d):\n", len(entries)))
	for i, e := range entries {
		if e.Offer == nil {
			builder.WriteString(fmt.Sprintf("%d. %s | %s\n", i+1, e.ID, missingData))
			continue
		}
		builder.WriteString(fmt.Sprintf("%d. %s | %s | %s\n", i+1, e.ID, e.Offer.Title, e.Offer.Platform))
	}
	return strings.TrimRight(builder.String(), "\n"), nil
}

// parseCount reads a list count. Numbers too large for an int are pinned to
// the nearest bound.
func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(s, "-") {
			return offercache.MinListCount, nil
		}
		return offercache.MaxListCount, nil
	}
	return n, err
}

func (c *CommandImpl) Resend(ctx context.Context, inv command.Invocation) (string, error) {
	if err := c.requireElevated(ctx, inv); err != nil {
		return "", err
	}

	fields := strings.Fields(inv.Args)
	if len(fields) == 0 {
		return "", pkgerrors.WrapWithCode(pkgerrors.ErrInvalidInput, command.CodeInvalidInput,
			"Usage: /resend_giveaway <offer id>. Use /list_recent_offers to find ids.")
	}
	offerID := fields[0]

	offer, ok := c.Cache.Lookup(offerID)
	if !ok {
		return "", pkgerrors.WrapWithCode(pkgerrors.ErrNotFound, command.CodeNotFound,
			fmt.Sprintf("Offer %s was not found. Use /list_recent_offers to see cached ids.", offerID))
	}

	channel, ok := c.destinationFor(inv)
	if !ok {
		return "", pkgerrors.WrapWithCode(pkgerrors.ErrNotFound, command.CodeNotFound,
			"No destination configured. Set one with /set_giveaway_channel first.")
	}

	if _, err := c.Distributor.DeliverOne(ctx, channel, offer); err != nil {
		var de *distributor.DeliveryError
		if errors.As(err, &de) {
			return "", pkgerrors.WrapWithCode(err, string(de.Reason), deliveryFailure(offerID, de))
		}
		return "", unavailable(err, fmt.Sprintf("Could not send %s right now. Please try again later.", offerID))
	}

	if err := c.Posted.Mark(ctx, offerID); err != nil {
		c.Logger.Error("Failed to persist posted id", "offer", offerID, "error", err)
	}
	return fmt.Sprintf("📨 Sent %s (%s) to %s.", offer.Title, offerID, channel), nil
}

func deliveryFailure(offerID string, de *distributor.DeliveryError) string {
	msg := fmt.Sprintf("Could not send %s to %s: %s", offerID, de.ChannelID, de.Reason)
	if len(de.Missing) > 0 {
		msg += " (missing " + strings.Join(de.Missing, ", ") + ")"
	}
	if de.Err != nil && de.Reason == distributor.ReasonSendFailed {
		msg += ": " + de.Err.Error()
	}
	return msg
}
