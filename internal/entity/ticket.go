package entity

type Ticket struct {
	ID             int64  `json:"id" db:"id"`
	EventID        int64  `json:"event_id" db:"event_id"`
	Owner          string `json:"owner" db:"owner"`
	PurchasePrice  uint64 `json:"purchase_price" db:"purchase_price"`
	PurchaseHeight uint64 `json:"purchase_height" db:"purchase_height"`
	IsUsed         bool   `json:"is_used" db:"is_used"`
	IsRefunded     bool   `json:"is_refunded" db:"is_refunded"`
}

// Settled reports whether the ticket reached a terminal state.
func (t *Ticket) Settled() bool {
	return t.IsUsed || t.IsRefunded
}

// WithinRefundWindow reports whether a refund at height is still allowed.
func (t *Ticket) WithinRefundWindow(height, window uint64) bool {
	if height < t.PurchaseHeight {
		return true
	}
	return height-t.PurchaseHeight <= window
}
