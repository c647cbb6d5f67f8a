package models

import "time"

// Settings row categories
const (
	CategoryIndustryScore    = "INDUSTRY_SCORE"
	CategoryUrgencyBand      = "URGENCY_BAND"
	CategoryWorkflowRule     = "WORKFLOW_RULE"
	CategoryValidationList   = "VALIDATION_LIST"
	CategoryGlobalConst      = "GLOBAL_CONST"
	CategoryFollowupTemplate = "FOLLOWUP_TEMPLATE"
)

// SettingsRow is one flat configuration row as stored. RowIndex preserves the
// original sheet order so last-wins semantics for duplicate keys are stable.
type SettingsRow struct {
	ID          string    `db:"id" json:"id"`
	TenantID    string    `db:"tenant_id" json:"tenant_id"`
	RowIndex    int       `db:"row_index" json:"row_index"`
	Category    string    `db:"category" json:"category"`
	Key         string    `db:"key" json:"key"`
	Value1      string    `db:"value1" json:"value1"`
	Value2      string    `db:"value2" json:"value2"`
	Value3      string    `db:"value3" json:"value3"`
	Value4      string    `db:"value4" json:"value4"`
	Description string    `db:"description" json:"description"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
