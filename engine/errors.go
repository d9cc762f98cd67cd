package engine

import "errors"

// Validation failures are detected before the clock advances or any data
// structure is touched, so a returned error always means the book is
// unchanged. Callers classify with errors.Is.
var (
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidOrderType = errors.New("invalid order type")
	ErrOrderNotFound    = errors.New("order not found")
)

// InvariantViolation is the panic payload for internal consistency failures,
// such as the id index disagreeing with the price index. These are
// programmer errors: no caller resumes after one — once one fires the book
// can no longer be trusted and the process must abort.
type InvariantViolation string

func (v InvariantViolation) Error() string {
	return string(v)
}
