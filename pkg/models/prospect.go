package models

import (
	"encoding/json"
	"time"
)

// Prospect is a master prospect record in the staging database. Fields holds
// the full canonical field map; the promoted columns exist for matching and
// score write-back.
type Prospect struct {
	ID            string          `db:"id" json:"id"`
	TenantID      string          `db:"tenant_id" json:"tenant_id"`
	CompanyID     string          `db:"company_id" json:"company_id"`
	CompanyName   string          `db:"company_name" json:"company_name"`
	Industry      string          `db:"industry" json:"industry"`
	Fields        json.RawMessage `db:"fields" json:"fields"`
	PriorityScore *int            `db:"priority_score" json:"priority_score,omitempty"`
	UrgencyScore  *int            `db:"urgency_score" json:"urgency_score,omitempty"`
	UrgencyBand   *string         `db:"urgency_band" json:"urgency_band,omitempty"`
	TotalScore    *int            `db:"total_score" json:"total_score,omitempty"`
	IsStale       bool            `db:"is_stale" json:"is_stale"`
	ScoredAt      *time.Time      `db:"scored_at" json:"scored_at,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// CompanyRecord projects the prospect down to the slice the matcher consumes.
func (p *Prospect) CompanyRecord() CompanyRecord {
	return CompanyRecord{
		RecordRef:   p.CompanyID,
		CompanyID:   p.CompanyID,
		CompanyName: p.CompanyName,
	}
}
