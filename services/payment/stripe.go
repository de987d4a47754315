package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KowsickReddy/TravelGo/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway creates and verifies orders as Stripe PaymentIntents.
type StripeGateway struct {
	api           *client.API
	upiMerchantID string
}

// NewStripeGateway builds a gateway bound to secretKey. backends may be nil
// to talk to the live Stripe API.
func NewStripeGateway(secretKey, upiMerchantID string, backends *stripe.Backends) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{api: api, upiMerchantID: upiMerchantID}, nil
}

func (g *StripeGateway) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.PaymentOrder, error) {
	if req.Amount <= 0 {
		return nil, &GatewayError{Op: "create order", Err: models.ErrInvalidAmount}
	}
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.Amount.Minor()),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String("booking_" + req.BookingID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.BookingID)
	params.AddMetadata("payment_method", req.Method)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, &GatewayError{Op: "create order", Err: err}
	}

	order := &models.PaymentOrder{
		PaymentID:    pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       req.Amount,
		Currency:     strings.ToUpper(req.Currency),
		Method:       req.Method,
	}
	if req.Method == models.PaymentMethodUPI && g.upiMerchantID != "" {
		order.PaymentURL = UPIIntentURL(g.upiMerchantID, req.Amount, req.Currency, req.BookingID)
	}
	return order, nil
}

// VerifyOrder treats an order as captured once its intent has succeeded.
func (g *StripeGateway) VerifyOrder(ctx context.Context, paymentID, transactionID string) (bool, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(paymentID, params)
	if err != nil {
		return false, &GatewayError{Op: "verify order", Err: err}
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return false, nil
	}
	if transactionID != "" && pi.LatestCharge != nil && pi.LatestCharge.ID != "" &&
		transactionID != pi.LatestCharge.ID && transactionID != pi.ID {
		return false, nil
	}
	return true, nil
}

func (g *StripeGateway) Refund(ctx context.Context, paymentID string, amount *models.Amount) (*models.Refund, error) {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentID)}
	if amount != nil {
		params.Amount = stripe.Int64(amount.Minor())
	}
	params.Context = ctx

	r, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, &GatewayError{Op: "refund", Err: fmt.Errorf("payment %s: %w", paymentID, err)}
	}
	return &models.Refund{
		RefundID: r.ID,
		Status:   string(r.Status),
		Amount:   models.Amount(r.Amount),
	}, nil
}
