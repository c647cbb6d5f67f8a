package models

import (
	"time"

	"github.com/lib/pq"
)

// Entity types that carry alias tables
const (
	EntityTypeProspect = "prospect"
	EntityTypeActivity = "activity"
	EntityTypeAccount  = "account"
)

// Value types for canonical fields
const (
	ValueTypeString  = "string"
	ValueTypeNumber  = "number"
	ValueTypeDate    = "date"
	ValueTypeBoolean = "boolean"
	ValueTypeText    = "text"
)

// FieldAlias maps accepted raw header spellings onto a single canonical field
// name. Alias tables are loaded once per entity type and treated as immutable
// for the life of the process.
type FieldAlias struct {
	ID            string         `db:"id" json:"id"`
	TenantID      string         `db:"tenant_id" json:"tenant_id"`
	EntityType    string         `db:"entity_type" json:"entity_type"`
	CanonicalName string         `db:"canonical_name" json:"canonical_name"`
	DisplayHeader string         `db:"display_header" json:"display_header"`
	Variations    pq.StringArray `db:"variations" json:"variations"`
	ValueType     string         `db:"value_type" json:"value_type"`
	Required      bool           `db:"required" json:"required"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}
