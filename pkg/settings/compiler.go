// Package settings compiles flat configuration rows into the executable rule
// tables the scoring engine consults.
package settings

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// DefaultFollowUpDays is used when a workflow rule or follow-up template
// carries no parseable day offset.
const DefaultFollowUpDays = 14

// Diagnostics receives audit events about rows the compiler had to skip.
type Diagnostics interface {
	SettingsRowSkipped(ctx context.Context, row models.SettingsRow, reason string)
}

// Compiler turns raw settings rows into a RuleTableSnapshot. Compilation is
// total: malformed rows are skipped with a diagnostic, never an error.
type Compiler struct {
	diagnostics Diagnostics
	logger      ectologger.Logger
}

// NewCompiler creates a settings compiler. diagnostics may be nil.
func NewCompiler(diagnostics Diagnostics, logger ectologger.Logger) *Compiler {
	return &Compiler{
		diagnostics: diagnostics,
		logger:      logger,
	}
}

// Compile builds a snapshot from rows in their stored order. Duplicate keys
// within a category follow last-wins semantics.
func (c *Compiler) Compile(ctx context.Context, rows []models.SettingsRow) models.RuleTableSnapshot {
	ctx, span := tracing.StartSpan(ctx, "settings.Compiler.Compile")
	defer span.End()

	snapshot := models.EmptyRuleTableSnapshot()
	industryIndex := make(map[string]int)
	bandIndex := make(map[string]int)

	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		if key == "" {
			c.skip(ctx, row, "empty key")
			continue
		}

		switch row.Category {
		case models.CategoryIndustryScore:
			rule := models.IndustryScoreRule{
				IndustryKey: key,
				BaseScore:   parseIntDefault(row.Value1, 0),
				Keywords:    splitKeywords(row.Value2),
			}
			if i, ok := industryIndex[key]; ok {
				snapshot.IndustryScores[i] = rule
			} else {
				industryIndex[key] = len(snapshot.IndustryScores)
				snapshot.IndustryScores = append(snapshot.IndustryScores, rule)
			}

		case models.CategoryUrgencyBand:
			band := models.UrgencyBand{
				Name:    key,
				MinDays: parseIntDefault(row.Value1, 0),
				MaxDays: parseIntDefault(row.Value2, 0),
				Color:   row.Value3,
				Score:   models.UrgencyBandScore(key),
			}
			if i, ok := bandIndex[key]; ok {
				snapshot.UrgencyBands[i] = band
			} else {
				bandIndex[key] = len(snapshot.UrgencyBands)
				snapshot.UrgencyBands = append(snapshot.UrgencyBands, band)
			}

		case models.CategoryWorkflowRule:
			snapshot.WorkflowRules[key] = models.WorkflowRule{
				OutcomeKey:   key,
				Stage:        row.Value1,
				Status:       row.Value2,
				FollowUpDays: parseIntDefault(row.Value3, DefaultFollowUpDays),
				PriorityHint: row.Value4,
			}

		case models.CategoryValidationList:
			snapshot.ValidationLists[key] = splitList(row.Value1)

		case models.CategoryGlobalConst:
			snapshot.Constants[key] = inferConstant(key, row.Value1)

		case models.CategoryFollowupTemplate:
			snapshot.Templates[key] = models.FollowupTemplate{
				OutcomeKey: key,
				Template:   row.Value1,
				DayOffset:  parseIntDefault(row.Value2, DefaultFollowUpDays),
			}

		default:
			c.skip(ctx, row, "unrecognized category")
		}
	}

	sortBands(snapshot.UrgencyBands)
	snapshot.LoadedAt = time.Now().UTC()

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"rows":            len(rows),
		"industry_scores": len(snapshot.IndustryScores),
		"urgency_bands":   len(snapshot.UrgencyBands),
		"workflow_rules":  len(snapshot.WorkflowRules),
		"constants":       len(snapshot.Constants),
	}).Debug("Compiled rule table snapshot")

	return snapshot
}

func (c *Compiler) skip(ctx context.Context, row models.SettingsRow, reason string) {
	c.logger.WithContext(ctx).WithFields(map[string]any{
		"row_index": row.RowIndex,
		"category":  row.Category,
		"key":       row.Key,
		"reason":    reason,
	}).Warn("Skipping settings row")
	if c.diagnostics != nil {
		c.diagnostics.SettingsRowSkipped(ctx, row, reason)
	}
}

// sortBands orders bands so "Overdue" is evaluated first, then ascending
// MinDays.
func sortBands(bands []models.UrgencyBand) {
	sort.SliceStable(bands, func(i, j int) bool {
		if bands[i].Name == models.OverdueBandName {
			return bands[j].Name != models.OverdueBandName
		}
		if bands[j].Name == models.OverdueBandName {
			return false
		}
		return bands[i].MinDays < bands[j].MinDays
	})
}

func parseIntDefault(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		kw := strings.ToLower(strings.TrimSpace(p))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

// inferConstant types a GLOBAL_CONST value: boolean literals first, then a
// full numeric parse, otherwise string.
func inferConstant(key, raw string) models.GlobalConstant {
	trimmed := strings.TrimSpace(raw)
	lowered := strings.ToLower(trimmed)

	if lowered == "true" || lowered == "false" {
		return models.GlobalConstant{Key: key, Kind: models.ConstKindBool, Raw: lowered}
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil && trimmed != "" {
		return models.GlobalConstant{Key: key, Kind: models.ConstKindNumber, Raw: trimmed}
	}
	return models.GlobalConstant{Key: key, Kind: models.ConstKindString, Raw: trimmed}
}
