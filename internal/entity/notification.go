package entity

import (
	"time"
)

type LedgerEventType string

const (
	LedgerEventCreated         LedgerEventType = "event_created"
	LedgerTicketPurchased      LedgerEventType = "ticket_purchased"
	LedgerTicketValidated      LedgerEventType = "ticket_validated"
	LedgerTicketRefunded       LedgerEventType = "ticket_refunded"
	LedgerPlatformFeeUpdated   LedgerEventType = "platform_fee_updated"
	LedgerMinTicketPriceUpdate LedgerEventType = "min_ticket_price_updated"
)

// LedgerEvent is published after an operation commits.
type LedgerEvent struct {
	ID         string          `json:"id"`
	Type       LedgerEventType `json:"type"`
	Height     uint64          `json:"height"`
	Caller     string          `json:"caller"`
	EventID    int64           `json:"event_id,omitempty"`
	TicketID   int64           `json:"ticket_id,omitempty"`
	Amount     uint64          `json:"amount,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// OperationRecord is one journal line: an applied or rejected operation.
type OperationRecord struct {
	BatchID   string    `json:"batch_id,omitempty"`
	Height    uint64    `json:"height"`
	Caller    string    `json:"caller"`
	Operation string    `json:"operation"`
	Arguments string    `json:"arguments"`
	Code      ErrorCode `json:"code"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}
