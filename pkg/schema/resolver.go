// Package schema resolves raw sheet headers onto the canonical field schema
// using per-entity-type alias tables with a fuzzy fallback.
package schema

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/similarity"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// DefaultAliasThreshold is the minimum similarity for a fuzzy alias match
const DefaultAliasThreshold = 0.85

// Diagnostics receives audit events about alias-table drift. Implementations
// must not fail resolution; errors are the emitter's problem.
type Diagnostics interface {
	HeaderFuzzyResolved(ctx context.Context, entityType, rawHeader, canonicalName string, score float64)
	HeaderUnresolved(ctx context.Context, entityType, rawHeader string)
}

// aliasEntry is one normalized alias string and the canonical name it maps to
type aliasEntry struct {
	alias     string
	canonical string
}

// aliasTable is the lookup structure for one entity type
type aliasTable struct {
	exact   map[string]string
	entries []aliasEntry
}

// Resolver maps raw column headers to canonical field names. Alias tables are
// immutable after construction, so a Resolver is safe for concurrent use.
type Resolver struct {
	tables      map[string]aliasTable
	scorer      *similarity.Scorer
	threshold   float64
	diagnostics Diagnostics
	logger      ectologger.Logger
}

// NewResolver builds a Resolver from the loaded alias tables. Threshold <= 0
// falls back to DefaultAliasThreshold. diagnostics may be nil.
func NewResolver(aliases []models.FieldAlias, threshold float64, diagnostics Diagnostics, logger ectologger.Logger) *Resolver {
	if threshold <= 0 {
		threshold = DefaultAliasThreshold
	}

	tables := make(map[string]aliasTable)
	for _, fa := range aliases {
		table, ok := tables[fa.EntityType]
		if !ok {
			table = aliasTable{exact: make(map[string]string)}
		}

		candidates := append([]string{fa.CanonicalName, fa.DisplayHeader}, fa.Variations...)
		for _, raw := range candidates {
			normalized := normalizers.NormalizeHeader(raw)
			if normalized == "" {
				continue
			}
			if _, exists := table.exact[normalized]; !exists {
				table.exact[normalized] = fa.CanonicalName
				table.entries = append(table.entries, aliasEntry{alias: normalized, canonical: fa.CanonicalName})
			}
		}

		tables[fa.EntityType] = table
	}

	return &Resolver{
		tables:      tables,
		scorer:      similarity.NewScorer(),
		threshold:   threshold,
		diagnostics: diagnostics,
		logger:      logger,
	}
}

// Resolve maps one raw header to its canonical field name. The second return
// is false when no alias clears the threshold.
func (r *Resolver) Resolve(ctx context.Context, entityType, rawHeader string) (string, bool) {
	table, ok := r.tables[entityType]
	if !ok {
		metrics.HeaderResolutionsTotal.WithLabelValues(entityType, "unresolved").Inc()
		if r.diagnostics != nil {
			r.diagnostics.HeaderUnresolved(ctx, entityType, rawHeader)
		}
		return "", false
	}

	normalized := normalizers.NormalizeHeader(rawHeader)
	if normalized == "" {
		metrics.HeaderResolutionsTotal.WithLabelValues(entityType, "unresolved").Inc()
		if r.diagnostics != nil {
			r.diagnostics.HeaderUnresolved(ctx, entityType, rawHeader)
		}
		return "", false
	}

	if canonical, found := table.exact[normalized]; found {
		metrics.HeaderResolutionsTotal.WithLabelValues(entityType, "exact").Inc()
		return canonical, true
	}

	bestScore := 0.0
	bestCanonical := ""
	for _, entry := range table.entries {
		score := r.scorer.Levenshtein(normalized, entry.alias)
		if score > bestScore {
			bestScore = score
			bestCanonical = entry.canonical
		}
	}

	if bestScore >= r.threshold {
		r.logger.WithContext(ctx).WithFields(map[string]any{
			"entity_type": entityType,
			"raw_header":  rawHeader,
			"canonical":   bestCanonical,
			"score":       bestScore,
		}).Debug("Fuzzy-resolved header")
		if r.diagnostics != nil {
			r.diagnostics.HeaderFuzzyResolved(ctx, entityType, rawHeader, bestCanonical, bestScore)
		}
		metrics.HeaderResolutionsTotal.WithLabelValues(entityType, "fuzzy").Inc()
		return bestCanonical, true
	}

	metrics.HeaderResolutionsTotal.WithLabelValues(entityType, "unresolved").Inc()
	if r.diagnostics != nil {
		r.diagnostics.HeaderUnresolved(ctx, entityType, rawHeader)
	}
	return "", false
}

// BuildHeaderMap resolves a full header row to canonical name -> column index.
// Unresolved headers are simply absent; the caller decides whether a missing
// field blocks processing.
func (r *Resolver) BuildHeaderMap(ctx context.Context, entityType string, rawHeaders []string) map[string]int {
	ctx, span := tracing.StartSpan(ctx, "schema.Resolver.BuildHeaderMap")
	defer span.End()

	headerMap := make(map[string]int)
	for i, raw := range rawHeaders {
		canonical, ok := r.Resolve(ctx, entityType, raw)
		if !ok {
			continue
		}
		if _, taken := headerMap[canonical]; taken {
			continue
		}
		headerMap[canonical] = i
	}
	return headerMap
}

// Canonicalize converts a raw record into a CanonicalRecord, dropping cells
// whose headers do not resolve.
func (r *Resolver) Canonicalize(ctx context.Context, entityType string, raw models.RawRecord) models.CanonicalRecord {
	ctx, span := tracing.StartSpan(ctx, "schema.Resolver.Canonicalize")
	defer span.End()

	fields := make(map[string]string, len(raw.Cells))
	for header, value := range raw.Cells {
		canonical, ok := r.Resolve(ctx, entityType, header)
		if !ok {
			continue
		}
		fields[canonical] = value
	}

	return models.CanonicalRecord{
		RecordRef: raw.RecordRef,
		Fields:    fields,
	}
}
