package distributorimpl

import (
	"strings"
	"testing"
	"time"

	"github.com/orgball2608/giveaway-telegram-bot/internal/domain"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func TestRenderFields(t *testing.T) {
	ends := fixedNow.Add(72 * time.Hour)
	offer := domain.Offer{
		ID:          "gamerpower_77",
		Title:       "Widget Pro",
		URL:         "https://www.gamerpower.com/open/widget-pro",
		Description: "Grab it (while it lasts).",
		Platform:    "PC",
		Worth:       "$19.99",
		ExpiresAt:   &ends,
	}

	n := render(offer, true, fixedNow)

	wantParts := []string{
		"*[Widget Pro](https://www.gamerpower.com/open/widget-pro)*",
		`Grab it \(while it lasts\)\.`,
		"*Platform:* PC",
		`*Value:* $19\.99`,
		`*Ends:* 3 days from now \(2026\-10\-20 09:30 UTC\)`,
		`_Source: GamerPower · 2026\-10\-17 09:30 UTC_`,
	}
	for _, part := range wantParts {
		if !strings.Contains(n.Text, part) {
			t.Errorf("rendered text missing %q:\n%s", part, n.Text)
		}
	}
	if n.PhotoURL != "" {
		t.Errorf("PhotoURL = %q without thumbnail", n.PhotoURL)
	}
}

func TestRenderOptionalFields(t *testing.T) {
	n := render(domain.Offer{Title: "Bare", Platform: "Unknown"}, true, fixedNow)

	if !strings.HasPrefix(n.Text, "*Bare*") {
		t.Errorf("unlinked title not bold: %s", n.Text)
	}
	if !strings.Contains(n.Text, "Free giveaway\\!") {
		t.Errorf("missing default description: %s", n.Text)
	}
	for _, absent := range []string{"Value:", "Ends:"} {
		if strings.Contains(n.Text, absent) {
			t.Errorf("unexpected %q in %s", absent, n.Text)
		}
	}
}

func TestRenderPhotoSelection(t *testing.T) {
	offer := domain.Offer{Title: "Pic", Platform: "PC", Thumbnail: "https://img.test/a.jpg"}

	if n := render(offer, true, fixedNow); n.PhotoURL != offer.Thumbnail {
		t.Errorf("PhotoURL = %q, want thumbnail", n.PhotoURL)
	}
	if n := render(offer, false, fixedNow); n.PhotoURL != "" {
		t.Errorf("media not allowed but PhotoURL = %q", n.PhotoURL)
	}

	offer.Description = strings.Repeat("x", MaxCaptionLength)
	if n := render(offer, true, fixedNow); n.PhotoURL != "" {
		t.Errorf("caption too long but PhotoURL = %q", n.PhotoURL)
	}
}

func TestExpiryInThePast(t *testing.T) {
	got := expiry(fixedNow.Add(-2*time.Hour), fixedNow)
	if !strings.HasPrefix(got, "2 hours ago") {
		t.Fatalf("expiry = %q", got)
	}
}
