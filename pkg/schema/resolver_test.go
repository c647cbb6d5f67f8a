package schema

import (
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func prospectAliases() []models.FieldAlias {
	return []models.FieldAlias{
		{
			EntityType:    models.EntityTypeProspect,
			CanonicalName: "company_name",
			DisplayHeader: "Company Name",
			Variations:    []string{"Company", "Business Name", "Account Name"},
		},
		{
			EntityType:    models.EntityTypeProspect,
			CanonicalName: "industry",
			DisplayHeader: "Industry",
			Variations:    []string{"Sector", "Vertical"},
		},
		{
			EntityType:    models.EntityTypeProspect,
			CanonicalName: "days_since_last_contact",
			DisplayHeader: "Days Since Last Contact",
			Variations:    []string{"Days Since Contact"},
		},
	}
}

type recordingDiagnostics struct {
	fuzzy      []string
	unresolved []string
}

func (d *recordingDiagnostics) HeaderFuzzyResolved(_ context.Context, _, rawHeader, _ string, _ float64) {
	d.fuzzy = append(d.fuzzy, rawHeader)
}

func (d *recordingDiagnostics) HeaderUnresolved(_ context.Context, _, rawHeader string) {
	d.unresolved = append(d.unresolved, rawHeader)
}

func TestResolverResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("exact variation match", func(t *testing.T) {
		r := NewResolver(prospectAliases(), 0, nil, testLogger())

		canonical, ok := r.Resolve(ctx, models.EntityTypeProspect, "Business Name")
		require.True(t, ok)
		assert.Equal(t, "company_name", canonical)
	})

	t.Run("normalizes case and whitespace before lookup", func(t *testing.T) {
		r := NewResolver(prospectAliases(), 0, nil, testLogger())

		canonical, ok := r.Resolve(ctx, models.EntityTypeProspect, "  COMPANY   NAME ")
		require.True(t, ok)
		assert.Equal(t, "company_name", canonical)
	})

	t.Run("resolve is idempotent on canonical names", func(t *testing.T) {
		r := NewResolver(prospectAliases(), 0, nil, testLogger())

		for _, name := range []string{"company_name", "industry", "days_since_last_contact"} {
			canonical, ok := r.Resolve(ctx, models.EntityTypeProspect, name)
			require.True(t, ok)
			assert.Equal(t, name, canonical)

			again, ok := r.Resolve(ctx, models.EntityTypeProspect, canonical)
			require.True(t, ok)
			assert.Equal(t, canonical, again)
		}
	})

	t.Run("fuzzy match above threshold", func(t *testing.T) {
		diag := &recordingDiagnostics{}
		r := NewResolver(prospectAliases(), 0, diag, testLogger())

		canonical, ok := r.Resolve(ctx, models.EntityTypeProspect, "Company Nane")
		require.True(t, ok)
		assert.Equal(t, "company_name", canonical)
		assert.Contains(t, diag.fuzzy, "Company Nane")
	})

	t.Run("below threshold is not found", func(t *testing.T) {
		diag := &recordingDiagnostics{}
		r := NewResolver(prospectAliases(), 0, diag, testLogger())

		_, ok := r.Resolve(ctx, models.EntityTypeProspect, "Shoe Size")
		assert.False(t, ok)
		assert.Contains(t, diag.unresolved, "Shoe Size")
	})

	t.Run("blank header records an unresolved diagnostic", func(t *testing.T) {
		diag := &recordingDiagnostics{}
		r := NewResolver(prospectAliases(), 0, diag, testLogger())

		_, ok := r.Resolve(ctx, models.EntityTypeProspect, "   ")
		assert.False(t, ok)
		assert.Contains(t, diag.unresolved, "   ")
	})

	t.Run("unknown entity type is not found", func(t *testing.T) {
		r := NewResolver(prospectAliases(), 0, nil, testLogger())

		_, ok := r.Resolve(ctx, "order", "Company Name")
		assert.False(t, ok)
	})
}

func TestResolverBuildHeaderMap(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(prospectAliases(), 0, nil, testLogger())

	t.Run("maps known headers and skips unknown", func(t *testing.T) {
		headers := []string{"Company Name", "Revenue Band", "Industry", "Days Since Contact"}
		m := r.BuildHeaderMap(ctx, models.EntityTypeProspect, headers)

		assert.Equal(t, map[string]int{
			"company_name":            0,
			"industry":                2,
			"days_since_last_contact": 3,
		}, m)
	})

	t.Run("first column wins on duplicate canonical names", func(t *testing.T) {
		m := r.BuildHeaderMap(ctx, models.EntityTypeProspect, []string{"Company", "Company Name"})
		assert.Equal(t, map[string]int{"company_name": 0}, m)
	})

	t.Run("empty header row yields empty map", func(t *testing.T) {
		m := r.BuildHeaderMap(ctx, models.EntityTypeProspect, nil)
		assert.Empty(t, m)
	})
}

func TestResolverCanonicalize(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(prospectAliases(), 0, nil, testLogger())

	raw := models.RawRecord{
		RecordRef: "row-17",
		Cells: map[string]string{
			"Company Name": "K&L Recycling LLC",
			"Sector":       "Metal Fabrication",
			"Shoe Size":    "11",
		},
		ColumnCount: 3,
	}

	rec := r.Canonicalize(ctx, models.EntityTypeProspect, raw)

	assert.Equal(t, "row-17", rec.RecordRef)
	assert.Equal(t, "K&L Recycling LLC", rec.Get("company_name"))
	assert.Equal(t, "Metal Fabrication", rec.Get("industry"))
	assert.NotContains(t, rec.Fields, "Shoe Size")
}

func TestServiceHeaderMapCache(t *testing.T) {
	ctx := context.Background()
	headers := []string{"Company Name", "Industry"}

	t.Run("serves cached map while fresh", func(t *testing.T) {
		svc := NewService(NewResolver(prospectAliases(), 0, nil, testLogger()), time.Minute, testLogger())

		first := svc.HeaderMap(ctx, models.EntityTypeProspect, headers)
		second := svc.HeaderMap(ctx, models.EntityTypeProspect, headers)

		assert.Equal(t, first, second)
	})

	t.Run("invalidate forces rebuild", func(t *testing.T) {
		svc := NewService(NewResolver(prospectAliases(), 0, nil, testLogger()), time.Minute, testLogger())

		first := svc.HeaderMap(ctx, models.EntityTypeProspect, headers)
		svc.InvalidateCache(models.EntityTypeProspect)
		second := svc.HeaderMap(ctx, models.EntityTypeProspect, headers)

		assert.Equal(t, first, second)
	})

	t.Run("distinct header lists get distinct entries", func(t *testing.T) {
		svc := NewService(NewResolver(prospectAliases(), 0, nil, testLogger()), time.Minute, testLogger())

		a := svc.HeaderMap(ctx, models.EntityTypeProspect, []string{"Company Name"})
		b := svc.HeaderMap(ctx, models.EntityTypeProspect, []string{"Industry"})

		assert.Equal(t, map[string]int{"company_name": 0}, a)
		assert.Equal(t, map[string]int{"industry": 0}, b)
	})
}
