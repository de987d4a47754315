package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	JWTSecret []byte

	HealthHandler gin.HandlerFunc

	// Catalog endpoints
	SearchServicesHandler   gin.HandlerFunc
	GetServiceHandler       gin.HandlerFunc
	CreateServiceHandler    gin.HandlerFunc
	UpdatePriceHandler      gin.HandlerFunc
	RelistServiceHandler    gin.HandlerFunc
	SetServiceActiveHandler gin.HandlerFunc

	// Booking endpoints
	CreateBookingHandler   gin.HandlerFunc
	ListBookingsHandler    gin.HandlerFunc
	GetBookingHandler      gin.HandlerFunc
	InitiatePaymentHandler gin.HandlerFunc
	VerifyPaymentHandler   gin.HandlerFunc
	CancelBookingHandler   gin.HandlerFunc

	// Payment gateway callbacks
	PaymentWebhookHandler gin.HandlerFunc
}
