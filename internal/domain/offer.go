package domain

import (
	"encoding/json"
	"time"
)

// Offer is a normalized giveaway record. It is never mutated after the
// feed normalizer builds it.
type Offer struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	URL         string          `json:"url,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Description string          `json:"description"`
	Platform    string          `json:"platform"`
	Category    string          `json:"category,omitempty"`
	Worth       string          `json:"worth,omitempty"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}
