// Package scoring computes industry, urgency, priority and total scores for a
// canonical record against a compiled rule table snapshot.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Scoring defaults and contract weights
const (
	DefaultIndustryScore = 50
	DefaultUrgencyScore  = 20
	DefaultUrgencyBand   = "Low"
	DefaultStaleDays     = 60
	StaleMultiplier      = 0.3
	PriorityWeight       = 0.6
	UrgencyWeight        = 0.4
)

// Engine scores records. It is a pure function of its inputs and holds no
// state, so one instance serves any number of concurrent callers.
type Engine struct{}

// NewEngine creates a scoring engine
func NewEngine() *Engine {
	return &Engine{}
}

// Score computes every derived score for one record. It never fails:
// unparseable inputs fall back to documented defaults.
func (e *Engine) Score(record models.CanonicalRecord, snapshot models.RuleTableSnapshot) models.ScoreResult {
	industryScore, industryMatch := e.industryScore(record, snapshot)

	days := record.GetInt(models.FieldDaysSinceContact, 0)
	urgencyScore, urgencyBand := e.urgencyScore(days, snapshot)

	staleThreshold := snapshot.ConstNumber(models.ConstStaleProspectDays, DefaultStaleDays)
	isStale := float64(days) > staleThreshold

	multiplier := 1.0
	if isStale {
		multiplier = StaleMultiplier
	}
	priorityScore := int(math.Round(float64(industryScore) * multiplier))

	totalScore := int(math.Round(float64(priorityScore)*PriorityWeight + float64(urgencyScore)*UrgencyWeight))

	result := models.ScoreResult{
		IndustryScore:     industryScore,
		IndustryMatchType: industryMatch,
		UrgencyScore:      urgencyScore,
		UrgencyBand:       urgencyBand,
		PriorityScore:     priorityScore,
		TotalScore:        totalScore,
		IsStale:           isStale,
		DaysSinceContact:  days,
	}
	e.applyWorkflow(record, snapshot, &result)
	return result
}

// applyWorkflow resolves the record's outcome against the workflow rules,
// falling back to the follow-up template offset when no rule claims it.
// Records without an outcome get no next action.
func (e *Engine) applyWorkflow(record models.CanonicalRecord, snapshot models.RuleTableSnapshot, result *models.ScoreResult) {
	outcome := strings.TrimSpace(record.Get(models.FieldOutcome))
	if outcome == "" {
		return
	}

	if rule, ok := snapshot.WorkflowRuleFor(outcome); ok {
		result.Stage = rule.Stage
		result.Status = rule.Status
		result.FollowUpDays = rule.FollowUpDays
	} else if tmpl, ok := snapshot.TemplateFor(outcome); ok {
		result.FollowUpDays = tmpl.DayOffset
	} else {
		return
	}

	next := time.Now().UTC().AddDate(0, 0, result.FollowUpDays)
	result.NextActionAt = &next
}

// industryScore classifies the record's industry text: a rule whose industry
// key equals the text wins outright, then the first rule whose key occurs in
// the text, then the first rule with a keyword substring hit, then the
// default.
func (e *Engine) industryScore(record models.CanonicalRecord, snapshot models.RuleTableSnapshot) (int, string) {
	industryText := strings.ToLower(strings.TrimSpace(record.Get(models.FieldIndustry)))
	if industryText == "" {
		return DefaultIndustryScore, models.IndustryMatchDefault
	}

	for _, rule := range snapshot.IndustryScores {
		if strings.ToLower(strings.TrimSpace(rule.IndustryKey)) == industryText {
			return rule.BaseScore, models.IndustryMatchExact
		}
	}

	for _, rule := range snapshot.IndustryScores {
		key := strings.ToLower(strings.TrimSpace(rule.IndustryKey))
		if key != "" && strings.Contains(industryText, key) {
			return rule.BaseScore, models.IndustryMatchExact
		}
	}

	for _, rule := range snapshot.IndustryScores {
		for _, keyword := range rule.Keywords {
			if keyword != "" && strings.Contains(industryText, keyword) {
				return rule.BaseScore, models.IndustryMatchKeyword
			}
		}
	}

	return DefaultIndustryScore, models.IndustryMatchDefault
}

// urgencyScore finds the first band containing days. Bands arrive pre-sorted
// with "Overdue" first.
func (e *Engine) urgencyScore(days int, snapshot models.RuleTableSnapshot) (int, string) {
	for _, band := range snapshot.UrgencyBands {
		if days >= band.MinDays && days <= band.MaxDays {
			return models.UrgencyBandScore(band.Name), band.Name
		}
	}
	return DefaultUrgencyScore, DefaultUrgencyBand
}
