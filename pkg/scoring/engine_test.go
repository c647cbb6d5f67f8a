package scoring

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func testSnapshot() models.RuleTableSnapshot {
	snapshot := models.EmptyRuleTableSnapshot()
	snapshot.IndustryScores = []models.IndustryScoreRule{
		{IndustryKey: "Metal Fabrication", BaseScore: 90, Keywords: []string{"metal", "steel"}},
		{IndustryKey: "Recycling", BaseScore: 80, Keywords: []string{"waste", "scrap"}},
		{IndustryKey: "Logistics", BaseScore: 40, Keywords: []string{"freight", "trucking"}},
	}
	snapshot.UrgencyBands = []models.UrgencyBand{
		{Name: "Overdue", MinDays: -9999, MaxDays: -1, Score: 95},
		{Name: "High", MinDays: 0, MaxDays: 7, Score: 85},
		{Name: "Medium", MinDays: 8, MaxDays: 30, Score: 65},
		{Name: "Low", MinDays: 31, MaxDays: 9999, Score: 25},
	}
	snapshot.Constants = map[string]models.GlobalConstant{
		models.ConstStaleProspectDays: {Key: models.ConstStaleProspectDays, Kind: models.ConstKindNumber, Raw: "60"},
	}
	return snapshot
}

func record(industry string, days int) models.CanonicalRecord {
	return models.CanonicalRecord{
		RecordRef: "row-1",
		Fields: map[string]string{
			models.FieldIndustry:         industry,
			models.FieldDaysSinceContact: strconv.Itoa(days),
		},
	}
}

func TestScoreIndustry(t *testing.T) {
	e := NewEngine()
	snapshot := testSnapshot()

	t.Run("industry key inside record text scores exact", func(t *testing.T) {
		result := e.Score(record("ABC Metal Fabrication Co", 5), snapshot)
		assert.Equal(t, 90, result.IndustryScore)
		assert.Equal(t, models.IndustryMatchExact, result.IndustryMatchType)
	})

	t.Run("keyword fallback", func(t *testing.T) {
		result := e.Score(record("Industrial scrap hauling", 5), snapshot)
		assert.Equal(t, 80, result.IndustryScore)
		assert.Equal(t, models.IndustryMatchKeyword, result.IndustryMatchType)
	})

	t.Run("first keyword rule in table order wins", func(t *testing.T) {
		// "steel" (rule 1) and "waste" (rule 2) both present
		result := e.Score(record("steel waste processing", 5), snapshot)
		assert.Equal(t, 90, result.IndustryScore)
	})

	t.Run("equal industry key beats an earlier containment hit", func(t *testing.T) {
		overlapping := testSnapshot()
		overlapping.IndustryScores = []models.IndustryScoreRule{
			{IndustryKey: "Metal", BaseScore: 70},
			{IndustryKey: "Metal Fabrication", BaseScore: 90},
		}
		result := e.Score(record("Metal Fabrication", 5), overlapping)
		assert.Equal(t, 90, result.IndustryScore)
		assert.Equal(t, models.IndustryMatchExact, result.IndustryMatchType)
	})

	t.Run("no match defaults to 50", func(t *testing.T) {
		result := e.Score(record("Boutique floristry", 5), snapshot)
		assert.Equal(t, 50, result.IndustryScore)
		assert.Equal(t, models.IndustryMatchDefault, result.IndustryMatchType)
	})

	t.Run("missing industry field defaults to 50", func(t *testing.T) {
		rec := models.CanonicalRecord{Fields: map[string]string{models.FieldDaysSinceContact: "5"}}
		result := e.Score(rec, snapshot)
		assert.Equal(t, 50, result.IndustryScore)
	})
}

func TestScoreUrgencyBands(t *testing.T) {
	e := NewEngine()
	snapshot := testSnapshot()

	tests := []struct {
		days          int
		expectedBand  string
		expectedScore int
	}{
		{-1, "Overdue", 95},
		{0, "High", 85},
		{7, "High", 85},
		{8, "Medium", 65},
		{30, "Medium", 65},
		{31, "Low", 25},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.days), func(t *testing.T) {
			result := e.Score(record("Recycling", tt.days), snapshot)
			assert.Equal(t, tt.expectedBand, result.UrgencyBand)
			assert.Equal(t, tt.expectedScore, result.UrgencyScore)
		})
	}

	t.Run("no bands defaults to Low 20", func(t *testing.T) {
		empty := models.EmptyRuleTableSnapshot()
		result := e.Score(record("Recycling", 10), empty)
		assert.Equal(t, 20, result.UrgencyScore)
		assert.Equal(t, "Low", result.UrgencyBand)
	})

	t.Run("unparseable days defaults to zero", func(t *testing.T) {
		rec := models.CanonicalRecord{Fields: map[string]string{
			models.FieldIndustry:         "Recycling",
			models.FieldDaysSinceContact: "soon",
		}}
		result := e.Score(rec, snapshot)
		assert.Equal(t, 0, result.DaysSinceContact)
		assert.Equal(t, "High", result.UrgencyBand)
	})
}

func TestScoreStaleness(t *testing.T) {
	e := NewEngine()
	snapshot := testSnapshot()

	t.Run("over threshold applies stale multiplier", func(t *testing.T) {
		result := e.Score(record("ABC Metal Fabrication Co", 65), snapshot)
		assert.True(t, result.IsStale)
		assert.Equal(t, int(math.Round(90*0.3)), result.PriorityScore)
	})

	t.Run("at threshold is not stale", func(t *testing.T) {
		result := e.Score(record("ABC Metal Fabrication Co", 60), snapshot)
		assert.False(t, result.IsStale)
		assert.Equal(t, 90, result.PriorityScore)
	})

	t.Run("threshold defaults to 60 without the constant", func(t *testing.T) {
		noConst := testSnapshot()
		delete(noConst.Constants, models.ConstStaleProspectDays)

		assert.True(t, e.Score(record("Recycling", 61), noConst).IsStale)
		assert.False(t, e.Score(record("Recycling", 60), noConst).IsStale)
	})
}

func TestScoreTotal(t *testing.T) {
	e := NewEngine()
	snapshot := testSnapshot()

	t.Run("total follows the weighted formula", func(t *testing.T) {
		for days := -5; days <= 70; days += 5 {
			result := e.Score(record("Recycling depot", days), snapshot)
			expected := int(math.Round(float64(result.PriorityScore)*0.6 + float64(result.UrgencyScore)*0.4))
			assert.Equal(t, expected, result.TotalScore)
		}
	})

	t.Run("85 priority and 115 urgency round to 97", func(t *testing.T) {
		assert.Equal(t, 97, int(math.Round(85*PriorityWeight+115*UrgencyWeight)))
	})

	t.Run("empty snapshot still produces a result", func(t *testing.T) {
		result := e.Score(record("Anything", 10), models.EmptyRuleTableSnapshot())
		assert.Equal(t, 50, result.IndustryScore)
		assert.Equal(t, 20, result.UrgencyScore)
		assert.Equal(t, int(math.Round(50*0.6+20*0.4)), result.TotalScore)
	})
}

func TestScoreWorkflow(t *testing.T) {
	e := NewEngine()
	snapshot := testSnapshot()
	snapshot.WorkflowRules = map[string]models.WorkflowRule{
		"Meeting Scheduled": {OutcomeKey: "Meeting Scheduled", Stage: "Qualified", Status: "Active", FollowUpDays: 3},
		models.WorkflowRuleOther: {OutcomeKey: models.WorkflowRuleOther, Stage: "Prospecting", Status: "Open", FollowUpDays: 14},
	}
	snapshot.Templates = map[string]models.FollowupTemplate{
		"Left Voicemail": {OutcomeKey: "Left Voicemail", Template: "Try again on {date}", DayOffset: 2},
	}

	outcomeRecord := func(outcome string) models.CanonicalRecord {
		rec := record("Recycling", 5)
		rec.Fields[models.FieldOutcome] = outcome
		return rec
	}

	t.Run("recognized outcome applies its workflow rule", func(t *testing.T) {
		result := e.Score(outcomeRecord("Meeting Scheduled"), snapshot)
		assert.Equal(t, "Qualified", result.Stage)
		assert.Equal(t, "Active", result.Status)
		assert.Equal(t, 3, result.FollowUpDays)
		if assert.NotNil(t, result.NextActionAt) {
			assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 3), *result.NextActionAt, time.Minute)
		}
	})

	t.Run("unrecognized outcome falls back to the Other rule", func(t *testing.T) {
		result := e.Score(outcomeRecord("Carrier Pigeon Sent"), snapshot)
		assert.Equal(t, "Prospecting", result.Stage)
		assert.Equal(t, "Open", result.Status)
		assert.Equal(t, 14, result.FollowUpDays)
		if assert.NotNil(t, result.NextActionAt) {
			assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 14), *result.NextActionAt, time.Minute)
		}
	})

	t.Run("template offset applies when no workflow rule exists", func(t *testing.T) {
		templatesOnly := testSnapshot()
		templatesOnly.Templates = snapshot.Templates
		result := e.Score(outcomeRecord("Left Voicemail"), templatesOnly)
		assert.Empty(t, result.Stage)
		assert.Equal(t, 2, result.FollowUpDays)
		if assert.NotNil(t, result.NextActionAt) {
			assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 2), *result.NextActionAt, time.Minute)
		}
	})

	t.Run("no outcome means no next action", func(t *testing.T) {
		result := e.Score(record("Recycling", 5), snapshot)
		assert.Empty(t, result.Stage)
		assert.Zero(t, result.FollowUpDays)
		assert.Nil(t, result.NextActionAt)
	})

	t.Run("unclaimed outcome without an Other rule means no next action", func(t *testing.T) {
		result := e.Score(outcomeRecord("Anything"), testSnapshot())
		assert.Nil(t, result.NextActionAt)
	})
}
