package entity

import "math/bits"

const (
	MaxPlatformFeePercent  uint64 = 100
	DefaultPlatformFee     uint64 = 5
	DefaultMinTicketPrice  uint64 = 1_000_000
	DefaultMaxRefundWindow uint64 = 1008 // one week at ten-minute blocks
)

// CustodyMode decides who receives purchase payments and funds refunds.
type CustodyMode string

const (
	CustodyOrganizer CustodyMode = "organizer"
	CustodyPlatform  CustodyMode = "platform"
)

// PlatformConfig is the process-wide configuration singleton. Owner,
// MaxRefundWindow and PurchaseAfterEvent are fixed at initialization.
type PlatformConfig struct {
	Owner              string `json:"owner" db:"owner"`
	PlatformFeePercent uint64 `json:"platform_fee_percent" db:"platform_fee_percent"`
	MinTicketPrice     uint64 `json:"min_ticket_price" db:"min_ticket_price"`
	MaxRefundWindow    uint64 `json:"max_refund_window" db:"max_refund_window"`
	PurchaseAfterEvent bool   `json:"purchase_after_event" db:"purchase_after_event"`
}

// CalculateFee returns floor(amount * PlatformFeePercent / 100) without
// intermediate overflow.
func (p *PlatformConfig) CalculateFee(amount uint64) uint64 {
	return CalculatePlatformFee(amount, p.PlatformFeePercent)
}

// CalculatePlatformFee truncates toward zero. percent must not exceed 100.
func CalculatePlatformFee(amount, percent uint64) uint64 {
	hi, lo := bits.Mul64(amount, percent)
	q, _ := bits.Div64(hi, lo, 100)
	return q
}
