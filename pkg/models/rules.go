package models

import (
	"strconv"
	"time"
)

// IndustryScoreRule assigns a base score to an industry, with lowercase
// keyword substrings for fallback classification when the exact industry name
// is not present on a record.
type IndustryScoreRule struct {
	IndustryKey string   `json:"industry_key"`
	BaseScore   int      `json:"base_score"`
	Keywords    []string `json:"keywords"`
}

// UrgencyBand is a named, inclusive range of days-since/until-contact. The
// band literally named "Overdue" is always evaluated before the rest.
type UrgencyBand struct {
	Name    string `json:"name"`
	MinDays int    `json:"min_days"`
	MaxDays int    `json:"max_days"`
	Color   string `json:"color"`
	Score   int    `json:"score"`
}

// OverdueBandName is the band name with first-evaluation priority.
const OverdueBandName = "Overdue"

// UrgencyBandScore maps a band name to its fixed urgency score. The ranges are
// configuration, the scores are contract constants.
func UrgencyBandScore(name string) int {
	switch name {
	case OverdueBandName:
		return 95
	case "High":
		return 85
	case "Medium":
		return 65
	case "Low":
		return 25
	default:
		return 65
	}
}

// WorkflowRule maps an activity outcome to the stage/status transition and
// follow-up offset the tracker should apply.
type WorkflowRule struct {
	OutcomeKey   string `json:"outcome_key"`
	Stage        string `json:"stage"`
	Status       string `json:"status"`
	FollowUpDays int    `json:"follow_up_days"`
	PriorityHint string `json:"priority_hint"`
}

// WorkflowRuleOther is the fallback outcome key for unrecognized outcomes.
const WorkflowRuleOther = "Other"

// FollowupTemplate is the message template attached to an outcome.
type FollowupTemplate struct {
	OutcomeKey string `json:"outcome_key"`
	Template   string `json:"template"`
	DayOffset  int    `json:"day_offset"`
}

// GlobalConstant is a typed key/value setting. Exactly one of the typed
// accessors applies depending on Kind.
type GlobalConstant struct {
	Key  string `json:"key"`
	Kind string `json:"kind"` // bool, number or string
	Raw  string `json:"raw"`
}

const (
	ConstKindBool   = "bool"
	ConstKindNumber = "number"
	ConstKindString = "string"
)

// RuleTableSnapshot is the compiled, immutable view of one settings fetch.
type RuleTableSnapshot struct {
	IndustryScores  []IndustryScoreRule         `json:"industry_scores"`
	UrgencyBands    []UrgencyBand               `json:"urgency_bands"`
	WorkflowRules   map[string]WorkflowRule     `json:"workflow_rules"`
	ValidationLists map[string][]string         `json:"validation_lists"`
	Constants       map[string]GlobalConstant   `json:"constants"`
	Templates       map[string]FollowupTemplate `json:"followup_templates"`
	LoadedAt        time.Time                   `json:"loaded_at"`
}

// EmptyRuleTableSnapshot returns a snapshot with all tables initialized and
// empty, timestamped now. Scoring against it falls back to every default.
func EmptyRuleTableSnapshot() RuleTableSnapshot {
	return RuleTableSnapshot{
		IndustryScores:  []IndustryScoreRule{},
		UrgencyBands:    []UrgencyBand{},
		WorkflowRules:   map[string]WorkflowRule{},
		ValidationLists: map[string][]string{},
		Constants:       map[string]GlobalConstant{},
		Templates:       map[string]FollowupTemplate{},
		LoadedAt:        time.Now().UTC(),
	}
}

// WorkflowRuleFor returns the workflow rule for an outcome, falling back to
// the "Other" rule for unrecognized outcomes. ok is false when neither exists.
func (s RuleTableSnapshot) WorkflowRuleFor(outcome string) (WorkflowRule, bool) {
	if rule, ok := s.WorkflowRules[outcome]; ok {
		return rule, true
	}
	rule, ok := s.WorkflowRules[WorkflowRuleOther]
	return rule, ok
}

// TemplateFor returns the follow-up template for an outcome with the same
// "Other" fallback as WorkflowRuleFor.
func (s RuleTableSnapshot) TemplateFor(outcome string) (FollowupTemplate, bool) {
	if t, ok := s.Templates[outcome]; ok {
		return t, true
	}
	t, ok := s.Templates[WorkflowRuleOther]
	return t, ok
}

// ConstNumber returns a numeric constant, or def when the key is absent or
// not numeric.
func (s RuleTableSnapshot) ConstNumber(key string, def float64) float64 {
	c, ok := s.Constants[key]
	if !ok {
		return def
	}
	if c.Kind == ConstKindNumber {
		if v, err := strconv.ParseFloat(c.Raw, 64); err == nil {
			return v
		}
	}
	return def
}

// ConstBool returns a boolean constant, or def when the key is absent or not
// boolean.
func (s RuleTableSnapshot) ConstBool(key string, def bool) bool {
	c, ok := s.Constants[key]
	if !ok || c.Kind != ConstKindBool {
		return def
	}
	v, err := strconv.ParseBool(c.Raw)
	if err != nil {
		return def
	}
	return v
}

// ConstString returns a string constant, or def when the key is absent.
func (s RuleTableSnapshot) ConstString(key string, def string) string {
	c, ok := s.Constants[key]
	if !ok {
		return def
	}
	return c.Raw
}
