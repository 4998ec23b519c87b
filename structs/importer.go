package structs

import "time"

// RecordOutcome classifies what happened to a single feed record.
type RecordOutcome string

const (
	OutcomeCreated RecordOutcome = "created"
	OutcomeUpdated RecordOutcome = "updated"
	OutcomeSkipped RecordOutcome = "skipped"
	OutcomeFailed  RecordOutcome = "failed"
)

// RecordFailure ties a skip or failure back to a specific record and reason.
type RecordFailure struct {
	SKU     string        `json:"sku"`
	Outcome RecordOutcome `json:"outcome"`
	Reason  string        `json:"reason"`
}

// RunSummary is the structured result of one full pass over the feed.
type RunSummary struct {
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Duration    time.Duration   `json:"duration"`
	RecordsSeen int             `json:"records_seen"`
	Created     int             `json:"created"`
	Updated     int             `json:"updated"`
	Skipped     int             `json:"skipped"`
	Failed      int             `json:"failed"`
	MediaErrors int             `json:"media_errors"`
	Failures    []RecordFailure `json:"failures,omitempty"`
	// Warnings are partial failures on records that still persisted,
	// e.g. a single image that could not be downloaded.
	Warnings   []RecordFailure `json:"warnings,omitempty"`
	FatalError string          `json:"fatal_error,omitempty"`
}

// AttributeEntry is one descriptive attribute on a product. The full set is
// rebuilt from the feed on every run, never merged with prior state.
type AttributeEntry struct {
	Name      string   `json:"name"`
	Options   []string `json:"options"`
	Position  int      `json:"position"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
}
