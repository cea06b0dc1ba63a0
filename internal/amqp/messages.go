package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"wellness/internal/core"
)

// RecordCreatedMessage announces a newly stored record. It carries only the
// kind and id; consumers read the row itself from the database.
type RecordCreatedMessage struct {
	Kind      core.RecordKind `json:"kind"`
	ID        int64           `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewRecordCreatedMessage(kind core.RecordKind, id int64) *RecordCreatedMessage {
	return &RecordCreatedMessage{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RecordCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordCreatedMessageFromJSON decodes and checks a message body.
func RecordCreatedMessageFromJSON(data []byte) (*RecordCreatedMessage, error) {
	var msg RecordCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Kind.IsValid() {
		return nil, fmt.Errorf("unknown record kind %q", msg.Kind)
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("invalid record id %d", msg.ID)
	}
	return &msg, nil
}
