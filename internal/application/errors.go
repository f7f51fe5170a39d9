package application

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrInvalidAmount       = errors.New("invalid order amount")
	ErrInvalidCategory     = errors.New("invalid tea category")
)

// GatewayError carries the gateway's own failure reason so the initiate
// endpoint can surface it verbatim as a client error.
type GatewayError struct {
	Reason string
}

func (e *GatewayError) Error() string {
	return e.Reason
}
