package distributorimpl

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/formatter"
)

const (
	// MaxCaptionLength is Telegram's limit for photo captions.
	MaxCaptionLength = 1024
	SourceName       = "GamerPower"
	emptyDescription = "Free giveaway!"
	timestampLayout  = "2006-01-02 15:04 UTC"
)

// render builds the MarkdownV2 notification for offer. The thumbnail becomes
// a photo only when media is allowed and the text fits in a caption.
func render(offer domain.Offer, withMedia bool, now time.Time) domain.Notification {
	var sb strings.Builder

	title := formatter.EscapeMarkdownV2(offer.Title)
	if offer.URL != "" {
		sb.WriteString("*[" + title + "](" + formatter.EscapeMarkdownV2URL(offer.URL) + ")*")
	} else {
		sb.WriteString("*" + title + "*")
	}
	sb.WriteString("\n\n")

	description := offer.Description
	if strings.TrimSpace(description) == "" {
		description = emptyDescription
	}
	sb.WriteString(formatter.EscapeMarkdownV2(description))
	sb.WriteString("\n\n")

	writeField(&sb, "Platform", offer.Platform)
	if offer.Worth != "" {
		writeField(&sb, "Value", offer.Worth)
	}
	if offer.ExpiresAt != nil {
		writeField(&sb, "Ends", expiry(*offer.ExpiresAt, now))
	}

	sb.WriteString("\n_")
	sb.WriteString(formatter.EscapeMarkdownV2("Source: " + SourceName + " · " + now.UTC().Format(timestampLayout)))
	sb.WriteString("_")

	n := domain.Notification{Text: sb.String()}
	if withMedia && offer.Thumbnail != "" && utf8.RuneCountInString(n.Text) <= MaxCaptionLength {
		n.PhotoURL = offer.Thumbnail
	}
	return n
}

func writeField(sb *strings.Builder, name, value string) {
	sb.WriteString("*" + name + ":* ")
	sb.WriteString(formatter.EscapeMarkdownV2(value))
	sb.WriteString("\n")
}

// expiry renders "3 days from now (2099-01-01 00:00 UTC)".
func expiry(at, now time.Time) string {
	return humanize.RelTime(at, now, "ago", "from now") + " (" + at.UTC().Format(timestampLayout) + ")"
}
