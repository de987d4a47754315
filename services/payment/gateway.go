// Package payment adapts external payment gateways to the booking flow.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/KowsickReddy/TravelGo/models"
)

// ErrGatewayUnavailable matches every adapter failure: network errors,
// gateway rejections and missing configuration alike.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// GatewayError wraps the provider error of a failed gateway call.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool { return target == ErrGatewayUnavailable }

// Gateway is the contract the booking flow needs from a payment provider.
// Implementations report failures as errors and never fabricate orders;
// falling back to synthetic orders is the caller's decision.
type Gateway interface {
	// CreateOrder opens a payment order for the amount, in minor units.
	CreateOrder(ctx context.Context, req models.OrderRequest) (*models.PaymentOrder, error)
	// VerifyOrder reports whether the order has been captured.
	VerifyOrder(ctx context.Context, paymentID, transactionID string) (bool, error)
	// Refund returns money for a captured order. A nil amount refunds in full.
	Refund(ctx context.Context, paymentID string, amount *models.Amount) (*models.Refund, error)
}
