package feedimpl

import (
	"bytes"
	"encoding/json"
	"strings"
)

// record is one raw giveaway as served by the feed. Every field is optional.
type record struct {
	ID              flexString `json:"id"`
	Title           string     `json:"title"`
	OpenGiveawayURL string     `json:"open_giveaway_url"`
	URL             string     `json:"url"`
	Image           string     `json:"image"`
	Thumbnail       string     `json:"thumbnail"`
	Description     string     `json:"description"`
	Instructions    string     `json:"instructions"`
	Platforms       string     `json:"platforms"`
	Platform        string     `json:"platform"`
	Type            string     `json:"type"`
	Worth           string     `json:"worth"`
	EndDate         string     `json:"end_date"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
