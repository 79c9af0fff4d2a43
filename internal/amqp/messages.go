package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event actions carried on the ledger exchange.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEventMessage announces a ledger mutation. It is deliberately
// thin: consumers fetch the full record from storage by id, so a stale
// message never overwrites fresher data.
type TransactionEventMessage struct {
	MessageID     string    `json:"messageId"`
	TransactionID string    `json:"transactionId"`
	OwnerID       string    `json:"ownerId"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEventMessage stamps a fresh event for the given mutation.
func NewTransactionEventMessage(transactionID, ownerID, action string) *TransactionEventMessage {
	return &TransactionEventMessage{
		MessageID:     uuid.NewString(),
		TransactionID: transactionID,
		OwnerID:       ownerID,
		Action:        action,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventMessageFromJSON decodes a message from JSON bytes.
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
