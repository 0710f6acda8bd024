package domain

import "time"

// Event types
const (
	EventTypeRunCreated  = "depreciation_run.created"
	EventTypeRunPosted   = "depreciation_run.posted"
	EventTypeRunReversed = "depreciation_run.reversed"
)

// Aggregate types
const (
	AggregateTypeRun = "depreciation_run"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// Run event payloads are built as plain maps at the emission site; the GL
// collaborator consuming depreciation_run.posted reads the totals and posts
// the journal itself.
