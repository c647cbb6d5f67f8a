package matching

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestMatchCompanyExactID(t *testing.T) {
	m := NewMatcher(0, testLogger())
	ctx := context.Background()

	t.Run("identifier match wins even when names differ completely", func(t *testing.T) {
		candidate := models.CompanyRecord{CompanyID: "CID-42", CompanyName: "Totally Different Name"}
		masters := []models.CompanyRecord{
			{RecordRef: "CID-41", CompanyID: "CID-41", CompanyName: "Another Business"},
			{RecordRef: "CID-42", CompanyID: "CID-42", CompanyName: "Acme Holdings"},
		}

		result := m.MatchCompany(ctx, candidate, masters)

		assert.Equal(t, models.MatchTypeExactID, result.MatchType)
		assert.Equal(t, 1.0, result.Confidence)
		require.NotNil(t, result.MatchedRecordRef)
		assert.Equal(t, "CID-42", *result.MatchedRecordRef)
	})

	t.Run("identifiers compared after trimming", func(t *testing.T) {
		candidate := models.CompanyRecord{CompanyID: "  CID-42 "}
		masters := []models.CompanyRecord{{RecordRef: "CID-42", CompanyID: "CID-42"}}

		result := m.MatchCompany(ctx, candidate, masters)
		assert.Equal(t, models.MatchTypeExactID, result.MatchType)
	})

	t.Run("empty identifier falls through to name tiers", func(t *testing.T) {
		candidate := models.CompanyRecord{CompanyID: "   ", CompanyName: "Acme Holdings"}
		masters := []models.CompanyRecord{{RecordRef: "CID-1", CompanyID: "CID-1", CompanyName: "Acme Holdings LLC"}}

		result := m.MatchCompany(ctx, candidate, masters)
		assert.Equal(t, models.MatchTypeExactName, result.MatchType)
	})
}

func TestMatchCompanyExactName(t *testing.T) {
	m := NewMatcher(0, testLogger())
	ctx := context.Background()

	t.Run("suffix and punctuation differences still match exactly", func(t *testing.T) {
		candidate := models.CompanyRecord{CompanyName: "K & L Recycling", CompanyID: ""}
		masters := []models.CompanyRecord{
			{RecordRef: "CID-KL01", CompanyID: "CID-KL01", CompanyName: "K&L Recycling LLC"},
			{RecordRef: "CID-GW05", CompanyID: "CID-GW05", CompanyName: "Green Waste Corp"},
		}

		result := m.MatchCompany(ctx, candidate, masters)

		assert.Equal(t, models.MatchTypeExactName, result.MatchType)
		assert.Equal(t, 1.0, result.Confidence)
		require.NotNil(t, result.MatchedRecordRef)
		assert.Equal(t, "CID-KL01", *result.MatchedRecordRef)
	})
}

func TestMatchCompanyFuzzyName(t *testing.T) {
	m := NewMatcher(0, testLogger())
	ctx := context.Background()

	t.Run("close spelling clears the threshold", func(t *testing.T) {
		candidate := models.CompanyRecord{CompanyName: "Green Watse"}
		masters := []models.CompanyRecord{
			{RecordRef: "CID-GW05", CompanyName: "Green Waste Corp"},
			{RecordRef: "CID-KL01", CompanyName: "K&L Recycling LLC"},
		}

		result := m.MatchCompany(ctx, candidate, masters)

		assert.Equal(t, models.MatchTypeFuzzyName, result.MatchType)
		require.NotNil(t, result.MatchedRecordRef)
		assert.Equal(t, "CID-GW05", *result.MatchedRecordRef)
		assert.GreaterOrEqual(t, result.Confidence, DefaultFuzzyThreshold)
		assert.Less(t, result.Confidence, 1.0)
	})

	t.Run("ties break to first occurrence", func(t *testing.T) {
		candidate := models.CompanyRecord{CompanyName: "Green Watse"}
		masters := []models.CompanyRecord{
			{RecordRef: "first", CompanyName: "Green Waste Corp"},
			{RecordRef: "second", CompanyName: "Green Waste Corp"},
		}

		result := m.MatchCompany(ctx, candidate, masters)

		require.NotNil(t, result.MatchedRecordRef)
		assert.Equal(t, "first", *result.MatchedRecordRef)
	})

	t.Run("below threshold is none", func(t *testing.T) {
		candidate := models.CompanyRecord{CompanyName: "Bakery Supplies Direct"}
		masters := []models.CompanyRecord{
			{RecordRef: "CID-GW05", CompanyName: "Green Waste Corp"},
		}

		result := m.MatchCompany(ctx, candidate, masters)

		assert.Equal(t, models.MatchTypeNone, result.MatchType)
		assert.Equal(t, 0.0, result.Confidence)
		assert.Nil(t, result.MatchedRecordRef)
	})
}

func TestMatchCompanyNone(t *testing.T) {
	m := NewMatcher(0, testLogger())
	ctx := context.Background()

	t.Run("empty master list", func(t *testing.T) {
		result := m.MatchCompany(ctx, models.CompanyRecord{CompanyName: "Acme"}, nil)
		assert.Equal(t, models.MatchTypeNone, result.MatchType)
	})

	t.Run("empty candidate", func(t *testing.T) {
		result := m.MatchCompany(ctx, models.CompanyRecord{}, []models.CompanyRecord{
			{RecordRef: "CID-1", CompanyName: "Acme"},
		})
		assert.Equal(t, models.MatchTypeNone, result.MatchType)
		assert.Nil(t, result.MatchedRecordRef)
	})
}
