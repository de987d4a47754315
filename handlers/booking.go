package handlers

import (
	"net/http"
	"strings"

	"github.com/KowsickReddy/TravelGo/middleware"
	"github.com/KowsickReddy/TravelGo/models"
	"github.com/KowsickReddy/TravelGo/services/booking"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle to authenticated users.
type BookingHandler struct {
	BookingSvc booking.BookingService
	Logger     *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{BookingSvc: svc, Logger: logger}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var input models.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	b, err := h.BookingSvc.CreateBooking(c.Request.Context(), identity, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBookings handles GET /api/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	bookings, err := h.BookingSvc.ListBookings(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	b, err := h.BookingSvc.GetBooking(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// InitiatePayment handles POST /api/bookings/:id/payment.
func (h *BookingHandler) InitiatePayment(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var input models.InitiatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	order, err := h.BookingSvc.InitiatePayment(c.Request.Context(), identity, c.Param("id"), strings.ToLower(input.PaymentMethod))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// VerifyPayment handles POST /api/bookings/:id/payment/verify. The gateway
// references may arrive as JSON or as a form post from a redirect.
func (h *BookingHandler) VerifyPayment(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var input models.VerifyPaymentInput
	var err error
	if c.ContentType() == binding.MIMEJSON {
		err = c.ShouldBindJSON(&input)
	} else {
		err = c.ShouldBind(&input)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	b, err := h.BookingSvc.VerifyPayment(c.Request.Context(), identity, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking handles DELETE /api/bookings/:id.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	b, err := h.BookingSvc.CancelBooking(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func requireIdentity(c *gin.Context) (models.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return identity, ok
}
