// Package matching resolves incoming activity records to master prospect
// records through tiered identifier, exact-name and fuzzy-name matching.
package matching

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/similarity"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// DefaultFuzzyThreshold is the minimum similarity for a FUZZY_NAME match
const DefaultFuzzyThreshold = 0.75

// Matcher resolves candidate company records against a master list. It is
// stateless and safe for concurrent use.
type Matcher struct {
	scorer         *similarity.Scorer
	fuzzyThreshold float64
	logger         ectologger.Logger
}

// NewMatcher creates a Matcher. threshold <= 0 falls back to
// DefaultFuzzyThreshold.
func NewMatcher(threshold float64, logger ectologger.Logger) *Matcher {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &Matcher{
		scorer:         similarity.NewScorer(),
		fuzzyThreshold: threshold,
		logger:         logger,
	}
}

// MatchCompany resolves a candidate against the master list. Tiers are tried
// in order and the first hit wins: EXACT_ID, EXACT_NAME, FUZZY_NAME, NONE.
// Matching is best-effort; any runtime failure is reported as NONE rather
// than propagated.
func (m *Matcher) MatchCompany(ctx context.Context, candidate models.CompanyRecord, masters []models.CompanyRecord) (result models.MatchResult) {
	ctx, span := tracing.StartSpan(ctx, "matching.Matcher.MatchCompany")
	defer span.End()

	result = models.MatchResult{MatchType: models.MatchTypeNone, Confidence: 0}

	defer func() {
		if r := recover(); r != nil {
			m.logger.WithContext(ctx).WithFields(map[string]any{
				"candidate_ref": candidate.RecordRef,
				"panic":         r,
			}).Warn("Recovered panic during company matching")
			result = models.MatchResult{MatchType: models.MatchTypeNone, Confidence: 0}
		}
	}()

	if candidateID := strings.TrimSpace(candidate.CompanyID); candidateID != "" {
		for _, master := range masters {
			if strings.TrimSpace(master.CompanyID) == candidateID {
				ref := master.RecordRef
				return models.MatchResult{
					MatchedRecordRef: &ref,
					MatchType:        models.MatchTypeExactID,
					Confidence:       1.0,
				}
			}
		}
	}

	candidateName := normalizers.CanonicalizeCompany(candidate.CompanyName)
	if candidateName != "" {
		for _, master := range masters {
			if normalizers.CanonicalizeCompany(master.CompanyName) == candidateName {
				ref := master.RecordRef
				return models.MatchResult{
					MatchedRecordRef: &ref,
					MatchType:        models.MatchTypeExactName,
					Confidence:       1.0,
				}
			}
		}
	}

	bestScore := 0.0
	bestRef := ""
	for _, master := range masters {
		score := m.nameSimilarity(candidate.CompanyName, master.CompanyName)
		// Strictly greater keeps the first occurrence on ties.
		if score > bestScore {
			bestScore = score
			bestRef = master.RecordRef
		}
	}

	if bestScore >= m.fuzzyThreshold {
		m.logger.WithContext(ctx).WithFields(map[string]any{
			"candidate_ref": candidate.RecordRef,
			"matched_ref":   bestRef,
			"score":         bestScore,
		}).Debug("Fuzzy-matched company")
		return models.MatchResult{
			MatchedRecordRef: &bestRef,
			MatchType:        models.MatchTypeFuzzyName,
			Confidence:       bestScore,
		}
	}

	return result
}

// nameSimilarity scores two company names on their canonicalized forms. An
// empty canonical form scores 0 against anything, except when both sides were
// non-empty before canonicalization reduced them to empty, which scores 1.
func (m *Matcher) nameSimilarity(rawA, rawB string) float64 {
	canonA := normalizers.CanonicalizeCompany(rawA)
	canonB := normalizers.CanonicalizeCompany(rawB)

	if canonA == "" || canonB == "" {
		if canonA == "" && canonB == "" &&
			strings.TrimSpace(rawA) != "" && strings.TrimSpace(rawB) != "" {
			return 1.0
		}
		return 0.0
	}

	return m.scorer.Levenshtein(canonA, canonB)
}
