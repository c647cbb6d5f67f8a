package models

import (
	"encoding/json"
	"time"
)

// Activity statuses as the record moves through the pipeline
const (
	ActivityStatusPending   = "pending"
	ActivityStatusMatched   = "matched"
	ActivityStatusUnmatched = "unmatched"
	ActivityStatusScored    = "scored"
	ActivityStatusFailed    = "failed"
)

// Activity is a staged incoming activity record: the raw cells as they
// arrived, the canonical fields after normalization, and the resolution
// outcome once matching has run.
type Activity struct {
	ID                 string          `db:"id" json:"id"`
	TenantID           string          `db:"tenant_id" json:"tenant_id"`
	RecordRef          string          `db:"record_ref" json:"record_ref"`
	RawCells           json.RawMessage `db:"raw_cells" json:"raw_cells"`
	CanonicalFields    json.RawMessage `db:"canonical_fields" json:"canonical_fields"`
	MatchedProspectRef *string         `db:"matched_prospect_ref" json:"matched_prospect_ref,omitempty"`
	MatchType          string          `db:"match_type" json:"match_type"`
	MatchConfidence    float64         `db:"match_confidence" json:"match_confidence"`
	Status             string          `db:"status" json:"status"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}
