package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/services/booking"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const maxWebhookBody = int64(65536)

// PaymentWebhookHandler applies Stripe PaymentIntent events to bookings.
type PaymentWebhookHandler struct {
	BookingSvc booking.BookingService
	Secret     string
	Logger     *zap.Logger
}

func NewPaymentWebhookHandler(svc booking.BookingService, secret string, logger *zap.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{BookingSvc: svc, Secret: secret, Logger: logger}
}

// HandleStripeEvent handles POST /api/payments/webhook. Only events signed
// with the configured secret are accepted. Events for orders this service
// does not know, or for bookings already settled, are acknowledged so Stripe
// stops retrying them.
func (h *PaymentWebhookHandler) HandleStripeEvent(c *gin.Context) {
	if h.Secret == "" {
		h.Logger.Error("Rejected webhook event, STRIPE_WEBHOOK_SECRET is not set")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "webhook endpoint not configured"})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "unable to read request body"})
		return
	}

	event, err := h.parseEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.Logger.Warn("Rejected webhook event", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook event"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var pi stripe.PaymentIntent
	if event.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event carries no data"})
		return
	}
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil || pi.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment intent payload"})
		return
	}

	ctx := c.Request.Context()
	logger := h.Logger.With(zap.String("eventID", event.ID), zap.String("paymentID", pi.ID))
	if event.Type == "payment_intent.succeeded" {
		transactionID := pi.ID
		if pi.LatestCharge != nil && pi.LatestCharge.ID != "" {
			transactionID = pi.LatestCharge.ID
		}
		_, err = h.BookingSvc.ConfirmPaymentByOrder(ctx, pi.ID, transactionID)
	} else {
		err = h.BookingSvc.FailPaymentByOrder(ctx, pi.ID)
	}

	switch {
	case err == nil:
		logger.Info("Applied webhook event", zap.String("type", string(event.Type)))
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, booking.ErrAlreadyPaid),
		errors.Is(err, booking.ErrAlreadyCancelled),
		errors.Is(err, booking.ErrPaymentMismatch),
		errors.Is(err, booking.ErrPaymentCaptured),
		errors.Is(err, repository.ErrConflict):
		logger.Info("Ignored webhook event", zap.String("type", string(event.Type)), zap.Error(err))
	case statusFor(err) < http.StatusInternalServerError:
		logger.Warn("Webhook event not applied", zap.String("type", string(event.Type)), zap.Error(err))
	default:
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentWebhookHandler) parseEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, h.Secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
}
