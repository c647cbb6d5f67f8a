package models

// MatchType describes which matcher tier produced a result
type MatchType string

const (
	MatchTypeExactID   MatchType = "EXACT_ID"
	MatchTypeExactName MatchType = "EXACT_NAME"
	MatchTypeFuzzyName MatchType = "FUZZY_NAME"
	MatchTypeNone      MatchType = "NONE"
)

// CompanyRecord is the slice of a record the matcher cares about: an optional
// identifier and a company name, plus the ref the caller uses for write-back.
type CompanyRecord struct {
	RecordRef   string `json:"record_ref"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
}

// MatchResult is the outcome of resolving a candidate against the master list.
// MatchedRecordRef is nil when no tier cleared its threshold.
type MatchResult struct {
	MatchedRecordRef *string   `json:"matched_record_ref"`
	MatchType        MatchType `json:"match_type"`
	Confidence       float64   `json:"confidence"`
}
