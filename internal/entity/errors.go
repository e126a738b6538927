package entity

import "errors"

// ErrorCode is the numeric result code reported to callers. The values are
// part of the public contract and must not be renumbered.
type ErrorCode uint32

const (
	CodeOK                 ErrorCode = 0
	CodeNotAuthorized      ErrorCode = 1
	CodeNotFound           ErrorCode = 2
	CodeSoldOut            ErrorCode = 3
	CodeInvalidPrice       ErrorCode = 5
	CodeEventExpired       ErrorCode = 6
	CodeTicketUsed         ErrorCode = 10
	CodeRefundWindowClosed ErrorCode = 11
	CodeTransferFailed     ErrorCode = 100
)

// LedgerError is a rejected operation. It never carries partial state.
type LedgerError struct {
	Code    ErrorCode
	Message string
}

func (e *LedgerError) Error() string {
	return e.Message
}

var (
	// Authorization
	ErrNotAuthorized = &LedgerError{Code: CodeNotAuthorized, Message: "not authorized"}

	// Lookup
	ErrNotFound = &LedgerError{Code: CodeNotFound, Message: "not found"}

	// Capacity
	ErrSoldOut = &LedgerError{Code: CodeSoldOut, Message: "event is sold out"}

	// Validation. Refund windows above the platform ceiling share this code.
	ErrInvalidPrice = &LedgerError{Code: CodeInvalidPrice, Message: "invalid price"}
	ErrEventExpired = &LedgerError{Code: CodeEventExpired, Message: "event height has passed"}

	// Ticket state
	ErrTicketUsed          = &LedgerError{Code: CodeTicketUsed, Message: "ticket already used or refunded"}
	ErrRefundWindowClosed  = &LedgerError{Code: CodeRefundWindowClosed, Message: "refund window closed"}
	ErrTransferFailed      = &LedgerError{Code: CodeTransferFailed, Message: "value transfer failed"}
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrPlatformUninitiated = errors.New("platform configuration not initialized")
)

// CodeOf extracts the ledger code from err, looking through wrapping.
func CodeOf(err error) (ErrorCode, bool) {
	if err == nil {
		return CodeOK, true
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Code, true
	}
	return 0, false
}
