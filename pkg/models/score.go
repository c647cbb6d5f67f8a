package models

import "time"

// Canonical field names the scoring pipeline reads and writes
const (
	FieldCompanyID        = "company_id"
	FieldCompanyName      = "company_name"
	FieldIndustry         = "industry"
	FieldDaysSinceContact = "days_since_last_contact"
	FieldOutcome          = "outcome"
	FieldPriorityScore    = "priority_score"
	FieldUrgencyScore     = "urgency_score"
	FieldUrgencyBand      = "urgency_band"
	FieldTotalScore       = "total_score"
)

// ConstStaleProspectDays is the global constant key for the staleness
// threshold.
const ConstStaleProspectDays = "Stale_Prospect_Days"

// Industry match paths
const (
	IndustryMatchExact   = "exact"
	IndustryMatchKeyword = "keyword"
	IndustryMatchDefault = "default"
)

// ScoreResult holds every derived score for one record. The workflow fields
// are only set when the record carries an outcome and a workflow rule or
// follow-up template (possibly the "Other" fallback) claims it.
type ScoreResult struct {
	IndustryScore     int        `json:"industry_score"`
	IndustryMatchType string     `json:"industry_match_type"`
	UrgencyScore      int        `json:"urgency_score"`
	UrgencyBand       string     `json:"urgency_band"`
	PriorityScore     int        `json:"priority_score"`
	TotalScore        int        `json:"total_score"`
	IsStale           bool       `json:"is_stale"`
	DaysSinceContact  int        `json:"days_since_contact"`
	Stage             string     `json:"stage,omitempty"`
	Status            string     `json:"status,omitempty"`
	FollowUpDays      int        `json:"follow_up_days,omitempty"`
	NextActionAt      *time.Time `json:"next_action_at,omitempty"`
}

// BatchResult aggregates a batch scoring run. Failures never abort the batch;
// they are counted and surfaced alongside successes.
type BatchResult struct {
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []ScoreResult `json:"results,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}
