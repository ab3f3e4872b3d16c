package domain

import "time"

// Delivery is a successful send.
type Delivery struct {
	ChannelID string
	ChatID    int64
	MessageID int
}

// BatchReport summarises one distribution pass.
type BatchReport struct {
	RunID        string         `json:"run_id"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Fetched      int            `json:"fetched"`
	New          int            `json:"new"`
	Destinations int            `json:"destinations"`
	Sent         int            `json:"sent"`
	Failed       int            `json:"failed"`
	Failures     map[string]int `json:"failures,omitempty"`
	Note         string         `json:"note,omitempty"`
}

func (r *BatchReport) AddFailure(reason string) {
	if r.Failures == nil {
		r.Failures = make(map[string]int)
	}
	r.Failures[reason]++
	r.Failed++
}
