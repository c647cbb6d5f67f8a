package models

import "strconv"

// RawRecord is an entity record exactly as it arrived from the sheet: raw
// header text mapped to cell values, plus the total column count reported by
// the storage collaborator.
type RawRecord struct {
	RecordRef   string            `json:"record_ref"`
	Cells       map[string]string `json:"cells"`
	ColumnCount int               `json:"column_count"`
}

// CanonicalRecord is a record after header normalization: canonical field name
// mapped to cell value. RecordRef is opaque to the engine and only used by the
// caller for write-back.
type CanonicalRecord struct {
	RecordRef string            `json:"record_ref"`
	Fields    map[string]string `json:"fields"`
}

// Get returns the value for a canonical field, or "" when absent.
func (r CanonicalRecord) Get(name string) string {
	return r.Fields[name]
}

// GetInt parses a canonical field as an integer, falling back to def on
// absence or parse failure.
func (r CanonicalRecord) GetInt(name string, def int) int {
	raw, ok := r.Fields[name]
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
