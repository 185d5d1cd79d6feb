package events

import (
	"encoding/json"
	"time"

	"tally/internal/core"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionCleared = "cleared"
)

// ChangeMessage announces one ledger mutation on the event feed. Consumers
// get the full transaction payload for creates and updates; deletes carry
// only the id.
type ChangeMessage struct {
	Action      string            `json:"action"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	ID          string            `json:"id,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

func newChangeMessage(action string, tx *core.Transaction, id string) *ChangeMessage {
	return &ChangeMessage{
		Action:      action,
		Transaction: tx,
		ID:          id,
		Timestamp:   time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
