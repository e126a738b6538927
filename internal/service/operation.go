package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxVenueLength       = 100
	MaxCategoryLength    = 50
)

// CreateEventRequest represents the data needed to create an event
type CreateEventRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Description  string `json:"description" binding:"max=500"`
	Venue        string `json:"venue" binding:"max=100"`
	Category     string `json:"category" binding:"max=50"`
	EventHeight  uint64 `json:"event_height"`
	TotalTickets uint64 `json:"total_tickets"`
	TicketPrice  uint64 `json:"ticket_price"`
	RefundWindow uint64 `json:"refund_window"`
}

// Validate checks the text bounds, counted in characters.
func (r *CreateEventRequest) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"name", r.Name, MaxNameLength},
		{"description", r.Description, MaxDescriptionLength},
		{"venue", r.Venue, MaxVenueLength},
		{"category", r.Category, MaxCategoryLength},
	}
	for _, f := range fields {
		if n := utf8.RuneCountInString(f.value); n > f.max {
			return fmt.Errorf("%w: %s has %d characters, max %d", entity.ErrInvalidOperation, f.name, n, f.max)
		}
	}
	return nil
}

type OperationType string

const (
	OpCreateEvent          OperationType = "create-event"
	OpPurchaseTicket       OperationType = "purchase-ticket"
	OpValidateTicket       OperationType = "validate-ticket"
	OpRefundTicket         OperationType = "refund-ticket"
	OpUpdatePlatformFee    OperationType = "update-platform-fee"
	OpUpdateMinTicketPrice OperationType = "update-min-ticket-price"
)

// Operation is one state-changing call. Only the fields of its type are
// read: Event for create-event, EventID for purchase, TicketID for
// validate and refund, Value for the platform updates.
type Operation struct {
	Type     OperationType       `json:"type" binding:"required"`
	Caller   string              `json:"caller,omitempty"`
	Event    *CreateEventRequest `json:"event,omitempty"`
	EventID  int64               `json:"event_id,omitempty"`
	TicketID int64               `json:"ticket_id,omitempty"`
	Value    uint64              `json:"value,omitempty"`
}

type OperationResult struct {
	Index    int              `json:"index"`
	Type     OperationType    `json:"type"`
	Success  bool             `json:"success"`
	Code     entity.ErrorCode `json:"code"`
	Error    string           `json:"error,omitempty"`
	EventID  int64            `json:"event_id,omitempty"`
	TicketID int64            `json:"ticket_id,omitempty"`
}

type BatchResult struct {
	BatchID string            `json:"batch_id"`
	Height  uint64            `json:"height"`
	Results []OperationResult `json:"results"`
}
