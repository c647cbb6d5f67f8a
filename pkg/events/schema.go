// Package events handles event emission for resolution diagnostics and
// scoring outcomes.
package events

import "time"

// EventType defines the type of event
type EventType string

const (
	// Diagnostic events for alias-table and configuration drift
	EventTypeHeaderFuzzyResolved EventType = "header.fuzzy_resolved"
	EventTypeHeaderUnresolved    EventType = "header.unresolved"
	EventTypeSettingsRowSkipped  EventType = "settings.row_skipped"

	// Outcome events
	EventTypeProspectMatched EventType = "prospect.matched"
	EventTypeProspectScored  EventType = "prospect.scored"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	TenantID      string    `json:"tenant_id"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// HeaderResolutionEvent is emitted when a header resolves fuzzily or not at
// all, so operators can audit alias-table drift.
type HeaderResolutionEvent struct {
	BaseEvent
	EntityType    string  `json:"entity_type"`
	RawHeader     string  `json:"raw_header"`
	CanonicalName string  `json:"canonical_name,omitempty"`
	Score         float64 `json:"score,omitempty"`
}

// SettingsRowSkippedEvent is emitted when the compiler skips a malformed row
type SettingsRowSkippedEvent struct {
	BaseEvent
	RowIndex int    `json:"row_index"`
	Category string `json:"category"`
	Key      string `json:"key"`
	Reason   string `json:"reason"`
}

// ProspectMatchedEvent is emitted after an activity record is resolved
type ProspectMatchedEvent struct {
	BaseEvent
	RecordRef        string  `json:"record_ref"`
	MatchedRecordRef *string `json:"matched_record_ref"`
	MatchType        string  `json:"match_type"`
	Confidence       float64 `json:"confidence"`
}

// ProspectScoredEvent is emitted after a prospect's scores are written back.
// The workflow fields are present only when the activity carried an outcome.
type ProspectScoredEvent struct {
	BaseEvent
	RecordRef     string     `json:"record_ref"`
	IndustryScore int        `json:"industry_score"`
	UrgencyScore  int        `json:"urgency_score"`
	UrgencyBand   string     `json:"urgency_band"`
	PriorityScore int        `json:"priority_score"`
	TotalScore    int        `json:"total_score"`
	IsStale       bool       `json:"is_stale"`
	Stage         string     `json:"stage,omitempty"`
	Status        string     `json:"status,omitempty"`
	NextActionAt  *time.Time `json:"next_action_at,omitempty"`
}
