// Package event defines the transient notifications pushed to live sessions.
// Envelopes are never persisted and carry no delivery guarantee.
package event

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	TypeAccount      = "account"
	TypeTransaction  = "transaction"
	TypeNotification = "notification"
	TypeSystem       = "system"

	AccountCreated             = "account_created"
	TransactionCreated         = "transaction_created"
	LargeTransactionProcessing = "large_transaction_processing"
	LargeTransactionProcessed  = "large_transaction_processed"
	SystemAnnouncement         = "system_announcement"
)

// Envelope is a notification addressed to one or more sessions.
// On the wire the payload fields are flattened next to type, event and timestamp.
type Envelope struct {
	Type      string
	Event     string
	Payload   any
	Timestamp time.Time
}

// Stamp returns a copy carrying the delivery timestamp.
func (e Envelope) Stamp(at time.Time) Envelope {
	e.Timestamp = at.UTC()
	return e
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any)
	if e.Payload != nil {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("envelope payload must be a JSON object: %w", err)
		}
	}
	fields["type"] = e.Type
	if e.Event != "" {
		fields["event"] = e.Event
	}
	fields["timestamp"] = e.Timestamp.UTC().Format(time.RFC3339Nano)
	return json.Marshal(fields)
}
