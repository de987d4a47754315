package models

// Payment methods accepted when initiating a payment.
const (
	PaymentMethodUPI        = "upi"
	PaymentMethodCard       = "card"
	PaymentMethodNetBanking = "netbanking"
	PaymentMethodWallet     = "wallet"
)

// IsValidPaymentMethod reports whether m is an accepted payment method.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodNetBanking, PaymentMethodWallet:
		return true
	}
	return false
}

// OrderRequest asks the payment gateway for a new order covering one booking.
type OrderRequest struct {
	BookingID string
	Amount    Amount
	Currency  string
	Method    string
}

// PaymentOrder is the gateway's answer to an order request.
type PaymentOrder struct {
	PaymentID  string `json:"payment_id"`
	PaymentURL string `json:"payment_url,omitempty"`
	// ClientSecret lets a client SDK complete the payment with the gateway.
	ClientSecret string `json:"client_secret,omitempty"`
	Status       string `json:"status"`
	Amount       Amount `json:"amount"`
	Currency     string `json:"currency"`
	Method       string `json:"payment_method"`
	Synthetic    bool   `json:"-"`
}

// Refund is the result of a refund request against a captured payment.
type Refund struct {
	RefundID string `json:"refund_id"`
	Status   string `json:"status"`
	Amount   Amount `json:"amount"`
}

type InitiatePaymentInput struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}
