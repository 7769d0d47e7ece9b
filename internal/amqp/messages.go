package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage signals that the charge ledger of a condominium changed
// for a given fiscal year. It carries only the scope, the worker fetches the
// full ledger from the database and rebuilds the monthly snapshots.
type LedgerChangedMessage struct {
	CondominiumID string    `json:"condominium_id"`
	Year          int       `json:"year"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a new ledger change notification
func NewLedgerChangedMessage(condominiumID string, year int) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		CondominiumID: condominiumID,
		Year:          year,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
