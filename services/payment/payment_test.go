package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KowsickReddy/TravelGo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	gw, err := NewStripeGateway("sk_test_123", "merchant@upi", &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
	require.NoError(t, err)
	return gw
}

func TestStripeCreateOrder(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "600000", r.Form.Get("amount"))
		assert.Equal(t, "inr", r.Form.Get("currency"))
		assert.Equal(t, "b-1", r.Form.Get("metadata[booking_id]"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "pi_123",
			"object":        "payment_intent",
			"client_secret": "pi_123_secret",
			"status":        "requires_payment_method",
			"amount":        600000,
			"currency":      "inr",
		})
	})

	order, err := gw.CreateOrder(context.Background(), models.OrderRequest{
		BookingID: "b-1",
		Amount:    600000,
		Currency:  "INR",
		Method:    models.PaymentMethodUPI,
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", order.PaymentID)
	assert.Equal(t, "pi_123_secret", order.ClientSecret)
	assert.Equal(t, models.Amount(600000), order.Amount)
	assert.False(t, order.Synthetic)
	assert.True(t, strings.HasPrefix(order.PaymentURL, "upi://pay?"))
}

func TestStripeCreateOrderFailureIsGatewayUnavailable(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
	})

	_, err := gw.CreateOrder(context.Background(), models.OrderRequest{
		BookingID: "b-1", Amount: 100, Currency: "INR", Method: models.PaymentMethodCard,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGatewayUnavailable))
}

func TestStripeVerifyOrder(t *testing.T) {
	status := "succeeded"
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents/pi_123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "pi_123",
			"object": "payment_intent",
			"status": status,
		})
	})

	ok, err := gw.VerifyOrder(context.Background(), "pi_123", "pi_123")
	require.NoError(t, err)
	assert.True(t, ok)

	status = "requires_payment_method"
	ok, err = gw.VerifyOrder(context.Background(), "pi_123", "pi_123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStripeRefund(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		assert.Equal(t, "pi_123", r.Form.Get("payment_intent"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "re_1",
			"object": "refund",
			"status": "succeeded",
			"amount": 5000,
		})
	})

	refund, err := gw.Refund(context.Background(), "pi_123", nil)
	require.NoError(t, err)
	assert.Equal(t, "re_1", refund.RefundID)
	assert.Equal(t, models.Amount(5000), refund.Amount)
}

func TestNewStripeGatewayRequiresKey(t *testing.T) {
	_, err := NewStripeGateway("", "", nil)
	assert.Error(t, err)
}

func TestOfflineGatewayAlwaysUnavailable(t *testing.T) {
	var gw Gateway = OfflineGateway{}
	_, err := gw.CreateOrder(context.Background(), models.OrderRequest{Amount: 100})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	_, err = gw.VerifyOrder(context.Background(), "pi", "tx")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	_, err = gw.Refund(context.Background(), "pi", nil)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestSyntheticOrder(t *testing.T) {
	order := NewSyntheticOrder(models.OrderRequest{
		BookingID: "b-1", Amount: 250050, Currency: "INR", Method: models.PaymentMethodCard,
	})
	assert.True(t, order.Synthetic)
	assert.True(t, IsSynthetic(order.PaymentID))
	assert.Len(t, order.PaymentID, len(SyntheticOrderPrefix)+10)
	assert.Contains(t, order.PaymentURL, "amount=2500.50")
	assert.False(t, IsSynthetic("pi_123"))
}

func TestUPIIntentURL(t *testing.T) {
	u := UPIIntentURL("merchant@upi", 150000, "inr", "b-9")
	assert.True(t, strings.HasPrefix(u, "upi://pay?"))
	assert.Contains(t, u, "am=1500.00")
	assert.Contains(t, u, "cu=INR")
	assert.Contains(t, u, "pa=merchant%40upi")
}
