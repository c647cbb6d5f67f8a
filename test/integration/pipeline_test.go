package integration

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/schema"
	"github.com/Ramsey-B/clover/pkg/scoring"
	"github.com/Ramsey-B/clover/pkg/settings"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func activityAliases() []models.FieldAlias {
	return []models.FieldAlias{
		{
			EntityType:    models.EntityTypeActivity,
			CanonicalName: models.FieldCompanyName,
			DisplayHeader: "Company Name",
			Variations:    []string{"company", "client name"},
		},
		{
			EntityType:    models.EntityTypeActivity,
			CanonicalName: models.FieldCompanyID,
			DisplayHeader: "Company ID",
			Variations:    []string{"cid"},
		},
		{
			EntityType:    models.EntityTypeActivity,
			CanonicalName: models.FieldIndustry,
			DisplayHeader: "Industry",
		},
		{
			EntityType:    models.EntityTypeActivity,
			CanonicalName: models.FieldDaysSinceContact,
			DisplayHeader: "Days Since Last Contact",
			Variations:    []string{"days since contact"},
		},
	}
}

func settingsRows() []models.SettingsRow {
	return []models.SettingsRow{
		{RowIndex: 0, Category: models.CategoryIndustryScore, Key: "Metal Fabrication", Value1: "90", Value2: "metal,fabrication"},
		{RowIndex: 1, Category: models.CategoryUrgencyBand, Key: "Overdue", Value1: "-9999", Value2: "-1"},
		{RowIndex: 2, Category: models.CategoryUrgencyBand, Key: "High", Value1: "0", Value2: "7"},
		{RowIndex: 3, Category: models.CategoryUrgencyBand, Key: "Medium", Value1: "8", Value2: "30"},
		{RowIndex: 4, Category: models.CategoryUrgencyBand, Key: "Low", Value1: "31", Value2: "9999"},
		{RowIndex: 5, Category: models.CategoryGlobalConst, Key: models.ConstStaleProspectDays, Value1: "60"},
	}
}

// The full in-process pipeline: a messy sheet row is canonicalized, resolved
// to a master prospect, and scored against compiled settings.
func TestPipeline(t *testing.T) {
	ctx := context.Background()
	logger := getTestLogger()

	resolver := schema.NewResolver(activityAliases(), 0.85, nil, logger)
	matcher := matching.NewMatcher(0.75, logger)
	compiler := settings.NewCompiler(nil, logger)
	scorer := scoring.NewEngine()

	raw := models.RawRecord{
		RecordRef: "ROW-42",
		Cells: map[string]string{
			"Company Nane":              "K & L Recycling",
			" INDUSTRY ":                "Metal Fabrication",
			"Days Since Last Contact":   "65",
			"Unrelated Spreadsheet Col": "ignore me",
		},
		ColumnCount: 4,
	}

	record := resolver.Canonicalize(ctx, models.EntityTypeActivity, raw)

	require.Equal(t, "K & L Recycling", record.Get(models.FieldCompanyName), "typoed header resolves via fuzzy match")
	require.Equal(t, "Metal Fabrication", record.Get(models.FieldIndustry))
	require.Equal(t, 65, record.GetInt(models.FieldDaysSinceContact, 0))
	_, ok := record.Fields["Unrelated Spreadsheet Col"]
	assert.False(t, ok, "unresolved headers stay out of the canonical record")

	masters := []models.CompanyRecord{
		{RecordRef: "CID-KL01", CompanyID: "CID-KL01", CompanyName: "K&L Recycling LLC"},
		{RecordRef: "CID-GW05", CompanyID: "CID-GW05", CompanyName: "Green Waste Corp"},
	}

	match := matcher.MatchCompany(ctx, models.CompanyRecord{
		RecordRef:   record.RecordRef,
		CompanyID:   record.Get(models.FieldCompanyID),
		CompanyName: record.Get(models.FieldCompanyName),
	}, masters)

	require.NotNil(t, match.MatchedRecordRef)
	assert.Equal(t, "CID-KL01", *match.MatchedRecordRef)
	assert.Equal(t, models.MatchTypeExactName, match.MatchType)
	assert.Equal(t, 1.0, match.Confidence)

	snapshot := compiler.Compile(ctx, settingsRows())
	require.Len(t, snapshot.UrgencyBands, 4)
	assert.Equal(t, "Overdue", snapshot.UrgencyBands[0].Name)

	score := scorer.Score(record, snapshot)

	assert.Equal(t, 90, score.IndustryScore)
	assert.Equal(t, models.IndustryMatchExact, score.IndustryMatchType)
	assert.Equal(t, 25, score.UrgencyScore)
	assert.Equal(t, "Low", score.UrgencyBand)
	assert.True(t, score.IsStale)
	assert.Equal(t, 27, score.PriorityScore)
	assert.Equal(t, 26, score.TotalScore)
}

// A row with no usable identity still flows through without errors and lands
// on NONE plus default scores.
func TestPipelineDirtyRow(t *testing.T) {
	ctx := context.Background()
	logger := getTestLogger()

	resolver := schema.NewResolver(activityAliases(), 0.85, nil, logger)
	matcher := matching.NewMatcher(0.75, logger)
	compiler := settings.NewCompiler(nil, logger)
	scorer := scoring.NewEngine()

	raw := models.RawRecord{
		RecordRef: "ROW-43",
		Cells: map[string]string{
			"Days Since Contact": "not a number",
		},
		ColumnCount: 1,
	}

	record := resolver.Canonicalize(ctx, models.EntityTypeActivity, raw)

	match := matcher.MatchCompany(ctx, models.CompanyRecord{RecordRef: record.RecordRef}, []models.CompanyRecord{
		{RecordRef: "CID-KL01", CompanyID: "CID-KL01", CompanyName: "K&L Recycling LLC"},
	})
	assert.Equal(t, models.MatchTypeNone, match.MatchType)
	assert.Nil(t, match.MatchedRecordRef)

	score := scorer.Score(record, compiler.Compile(ctx, nil))

	assert.Equal(t, scoring.DefaultIndustryScore, score.IndustryScore)
	assert.Equal(t, scoring.DefaultUrgencyScore, score.UrgencyScore)
	assert.Equal(t, scoring.DefaultUrgencyBand, score.UrgencyBand)
	assert.False(t, score.IsStale)
}
