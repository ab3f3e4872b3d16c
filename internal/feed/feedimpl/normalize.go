package feedimpl

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
	"github.com/orgball2608/giveaway-telegram-bot/pkg/formatter"
)

const (
	IDPrefix             = "gamerpower_"
	MaxDescriptionLength = 800
	UnknownPlatform      = "Unknown"
	UnknownTitle         = "Unknown Giveaway"

	// the feed's placeholder for missing worth and end date
	notAvailable = "N/A"
)

var (
	parenGroup  = regexp.MustCompile(`\(([^)]+)\)`)
	parenStrip  = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	spaceRun    = regexp.MustCompile(`\s+`)
	dateLayouts = []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00", "2006-01-02"}
)

// normalize maps a parsed record onto the canonical offer. raw is kept as-is
// for diagnostics.
func normalize(r record, raw json.RawMessage) domain.Offer {
	title := cleanTitle(r.Title)
	link := firstNonEmpty(r.OpenGiveawayURL, r.URL)

	return domain.Offer{
		ID:          offerID(string(r.ID), title, link),
		Title:       title,
		URL:         link,
		Thumbnail:   firstNonEmpty(r.Image, r.Thumbnail),
		Description: formatter.Truncate(firstNonEmpty(r.Description, r.Instructions), MaxDescriptionLength),
		Platform:    firstNonEmpty(r.Platforms, r.Platform, platformFromTitle(r.Title), UnknownPlatform),
		Category:    strings.TrimSpace(r.Type),
		Worth:       available(r.Worth),
		ExpiresAt:   parseEndDate(r.EndDate),
		Raw:         raw,
	}
}

// offerID is stable across fetches: the feed's own id when present, otherwise
// a digest of the cleaned title and link.
func offerID(nativeID, title, link string) string {
	if nativeID != "" {
		return IDPrefix + nativeID
	}
	sum := sha256.Sum256([]byte(title + link))
	return IDPrefix + hex.EncodeToString(sum[:])[:12]
}

// cleanTitle removes every parenthetical group, e.g. "Widget Pro (PC)" -> "Widget Pro".
func cleanTitle(raw string) string {
	t := parenStrip.ReplaceAllString(raw, " ")
	t = strings.TrimSpace(spaceRun.ReplaceAllString(t, " "))
	if t == "" {
		return UnknownTitle
	}
	return t
}

func platformFromTitle(raw string) string {
	m := parenGroup.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func parseEndDate(s string) *time.Time {
	s = available(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func available(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, notAvailable) {
		return ""
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
