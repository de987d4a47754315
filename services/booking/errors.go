package booking

import (
	"errors"

	"github.com/KowsickReddy/TravelGo/services/inventory"
	"github.com/KowsickReddy/TravelGo/services/payment"
)

var (
	ErrNotFound                  = errors.New("not found")
	ErrInsufficientAvailability  = inventory.ErrInsufficientAvailability
	ErrAlreadyPaid               = errors.New("payment already completed")
	ErrAlreadyCancelled          = errors.New("booking already cancelled")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	// ErrServiceUnavailable means a verified payment could not be honoured
	// because the service ran out of capacity. It wraps
	// ErrInsufficientAvailability.
	ErrServiceUnavailable = errors.New("service no longer available")
	ErrInvalidInput       = errors.New("invalid input")
	// ErrPaymentMismatch is returned when the client verifies an order that
	// is not the booking's outstanding one.
	ErrPaymentMismatch = errors.New("payment does not match the booking's outstanding order")
	// ErrPaymentCaptured is returned when a failure is reported for an order
	// the gateway says was captured.
	ErrPaymentCaptured    = errors.New("payment was captured by the gateway")
	ErrGatewayUnavailable = payment.ErrGatewayUnavailable
)
