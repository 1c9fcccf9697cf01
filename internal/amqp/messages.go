package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"paymonth/internal/core"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return true
	}
	return false
}

// TransactionEvent announces a change to one transaction. Deletions carry no
// Transaction body.
type TransactionEvent struct {
	Action      Action            `json:"action"`
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	Version     int64             `json:"version"`
	Timestamp   time.Time         `json:"timestamp"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
}

// NewTransactionEvent builds an event for tx. For ActionDeleted only the
// identifiers are kept.
func NewTransactionEvent(action Action, tx core.Transaction) *TransactionEvent {
	evt := &TransactionEvent{
		Action:    action,
		ID:        tx.ID,
		UserID:    tx.UserID,
		Version:   tx.Version,
		Timestamp: time.Now().UTC(),
	}
	if action != ActionDeleted {
		evt.Transaction = &tx
	}
	return evt
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var evt TransactionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	if !evt.Action.Valid() {
		return nil, fmt.Errorf("unknown action %q", evt.Action)
	}
	if evt.ID == "" {
		return nil, fmt.Errorf("event without transaction id")
	}
	return &evt, nil
}
