package payment

import (
	"context"
	"errors"

	"github.com/KowsickReddy/TravelGo/models"
)

var errNotConfigured = errors.New("no payment gateway configured")

// OfflineGateway is used when no gateway credentials are configured. Every
// call fails, so the booking flow depends entirely on its fallback policy.
type OfflineGateway struct{}

func (OfflineGateway) CreateOrder(context.Context, models.OrderRequest) (*models.PaymentOrder, error) {
	return nil, &GatewayError{Op: "create order", Err: errNotConfigured}
}

func (OfflineGateway) VerifyOrder(context.Context, string, string) (bool, error) {
	return false, &GatewayError{Op: "verify order", Err: errNotConfigured}
}

func (OfflineGateway) Refund(context.Context, string, *models.Amount) (*models.Refund, error) {
	return nil, &GatewayError{Op: "refund", Err: errNotConfigured}
}
