package payment

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/KowsickReddy/TravelGo/models"

	"github.com/google/uuid"
)

const (
	// SyntheticOrderPrefix marks locally generated order ids.
	SyntheticOrderPrefix  = "pay_mock_"
	syntheticRefundPrefix = "rfnd_mock_"
)

// IsSynthetic reports whether paymentID was generated locally in degraded mode.
func IsSynthetic(paymentID string) bool {
	return strings.HasPrefix(paymentID, SyntheticOrderPrefix)
}

// NewSyntheticOrder builds a local order used when the gateway is
// unreachable and the fallback policy is enabled.
func NewSyntheticOrder(req models.OrderRequest) *models.PaymentOrder {
	return &models.PaymentOrder{
		PaymentID:  SyntheticOrderPrefix + shortHex(),
		PaymentURL: fmt.Sprintf("mock://payment?amount=%s&booking=%s", req.Amount.String(), url.QueryEscape(req.BookingID)),
		Status:     "created",
		Amount:     req.Amount,
		Currency:   req.Currency,
		Method:     req.Method,
		Synthetic:  true,
	}
}

// NewSyntheticRefund builds the local counterpart of a refund on a synthetic order.
func NewSyntheticRefund(amount models.Amount) *models.Refund {
	return &models.Refund{
		RefundID: syntheticRefundPrefix + shortHex(),
		Status:   "processed",
		Amount:   amount,
	}
}

func shortHex() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}

// UPIIntentURL builds the upi:// deep link a UPI app opens to pay the merchant.
func UPIIntentURL(merchantVPA string, amount models.Amount, currency, bookingID string) string {
	q := url.Values{}
	q.Set("pa", merchantVPA)
	q.Set("pn", "TravelGo")
	q.Set("am", amount.String())
	q.Set("cu", strings.ToUpper(currency))
	q.Set("tn", "Booking "+bookingID)
	return "upi://pay?" + q.Encode()
}
