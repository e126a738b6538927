package entity

// OrganizerAccount aggregates everything an identity has organized.
// TotalRevenue is gross historical revenue and never decreases, refunds
// included.
type OrganizerAccount struct {
	Identity           string `json:"identity" db:"identity"`
	EventsOrganized    uint64 `json:"events_organized" db:"events_organized"`
	TotalRevenue       uint64 `json:"total_revenue" db:"total_revenue"`
	PendingWithdrawals uint64 `json:"pending_withdrawals" db:"pending_withdrawals"`
}

// UserTickets lists the tickets an identity bought, in purchase order.
type UserTickets struct {
	Identity  string  `json:"identity"`
	TicketIDs []int64 `json:"ticket_ids"`
}
