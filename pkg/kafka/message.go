package kafka

import (
	"encoding/json"
	"fmt"
	"time"
)

// IncomingMessage is a fetched Kafka message plus parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// ActivityMessage is set after a successful parse
	ActivityMessage *ActivityMessage
}

// ActivityMessage is one activity record from the sheet-sync pipeline: the
// raw header -> cell map exactly as it appeared in the sheet.
type ActivityMessage struct {
	TenantID    string            `json:"tenant_id"`
	RecordRef   string            `json:"record_ref"`
	Cells       map[string]string `json:"cells"`
	ColumnCount int               `json:"column_count"`
}

// ParseActivityMessage decodes the message body as an activity record
func (m *IncomingMessage) ParseActivityMessage() error {
	var msg ActivityMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return fmt.Errorf("parsing activity message: %w", err)
	}
	if msg.TenantID == "" {
		return fmt.Errorf("activity message missing tenant_id")
	}
	if msg.RecordRef == "" {
		return fmt.Errorf("activity message missing record_ref")
	}

	m.ActivityMessage = &msg
	return nil
}
