package ledger

import "fmt"

// ErrorCode classifies a rejected ledger operation.
type ErrorCode string

const (
	InvalidParameters    ErrorCode = "INVALID_PARAMETERS"
	InsufficientFunds    ErrorCode = "INSUFFICIENT_FUNDS"
	InsufficientHoldings ErrorCode = "INSUFFICIENT_HOLDINGS"
	AlreadyClaimedToday  ErrorCode = "ALREADY_CLAIMED_TODAY"
)

// TradeError is a domain rejection. It is returned inside results, never panicked.
type TradeError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *TradeError) Error() string { return e.Message }

// Is matches on Code so errors.Is(err, ErrInsufficientFunds) works for any message.
func (e *TradeError) Is(target error) bool {
	t, ok := target.(*TradeError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidParameters    = &TradeError{Code: InvalidParameters, Message: "invalid trade parameters"}
	ErrInsufficientFunds    = &TradeError{Code: InsufficientFunds, Message: "insufficient funds"}
	ErrInsufficientHoldings = &TradeError{Code: InsufficientHoldings, Message: "insufficient holdings"}
	ErrAlreadyClaimedToday  = &TradeError{Code: AlreadyClaimedToday, Message: "daily reward already claimed today"}
)

func newTradeError(code ErrorCode, format string, args ...any) *TradeError {
	return &TradeError{Code: code, Message: fmt.Sprintf(format, args...)}
}
