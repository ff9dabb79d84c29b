package services

import "errors"

// Domain errors. Controllers pick status codes with errors.Is; none of these
// are retried automatically except gateway unavailability, which the caller
// retries with backoff.
var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrMealNotFound    = errors.New("meal not found")
	ErrMealUnavailable = errors.New("meal is currently unavailable")
	ErrOrderNotFound   = errors.New("order not found")

	// ErrGatewayUnavailable covers network errors, timeouts and 5xx from the
	// payment processor: the payment outcome is unknown, never assumed.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected is a definitive refusal from the processor.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")

	ErrInvalidTransition = errors.New("invalid tracking stage transition")
)
