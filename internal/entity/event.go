package entity

// Event is a ticketed event registered by an organizer. Heights are host
// block heights, amounts are minor currency units.
type Event struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Description  string `json:"description" db:"description"`
	Venue        string `json:"venue" db:"venue"`
	Category     string `json:"category" db:"category"`
	Organizer    string `json:"organizer" db:"organizer"`
	EventHeight  uint64 `json:"event_height" db:"event_height"`
	TotalTickets uint64 `json:"total_tickets" db:"total_tickets"`
	TicketsSold  uint64 `json:"tickets_sold" db:"tickets_sold"`
	TicketPrice  uint64 `json:"ticket_price" db:"ticket_price"`
	RefundWindow uint64 `json:"refund_window" db:"refund_window"`
	Revenue      uint64 `json:"revenue" db:"revenue"`
	IsActive     bool   `json:"is_active" db:"is_active"`
}

// SoldOut reports whether no capacity remains. Refunded tickets keep
// counting against capacity.
func (e *Event) SoldOut() bool {
	return e.TicketsSold >= e.TotalTickets
}

// AvailableTickets returns the remaining capacity.
func (e *Event) AvailableTickets() uint64 {
	if e.SoldOut() {
		return 0
	}
	return e.TotalTickets - e.TicketsSold
}

// HasOccurred reports whether the event height has been reached at height.
func (e *Event) HasOccurred(height uint64) bool {
	return height >= e.EventHeight
}
