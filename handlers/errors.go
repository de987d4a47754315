package handlers

import (
	"errors"
	"net/http"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/services/booking"
	"github.com/KowsickReddy/TravelGo/services/catalog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorStatus maps domain errors to HTTP status codes. Order matters:
// ErrServiceUnavailable wraps ErrInsufficientAvailability and must win.
var errorStatus = []struct {
	err    error
	status int
}{
	{booking.ErrNotFound, http.StatusNotFound},
	{catalog.ErrNotFound, http.StatusNotFound},
	{repository.ErrNotFound, http.StatusNotFound},
	{catalog.ErrForbidden, http.StatusForbidden},
	{booking.ErrServiceUnavailable, http.StatusConflict},
	{booking.ErrAlreadyPaid, http.StatusConflict},
	{booking.ErrAlreadyCancelled, http.StatusConflict},
	{booking.ErrPaymentMismatch, http.StatusConflict},
	{booking.ErrPaymentCaptured, http.StatusConflict},
	{repository.ErrConflict, http.StatusConflict},
	{booking.ErrPaymentVerificationFailed, http.StatusPaymentRequired},
	{booking.ErrInsufficientAvailability, http.StatusBadRequest},
	{booking.ErrInvalidInput, http.StatusBadRequest},
	{catalog.ErrInvalidInput, http.StatusBadRequest},
	{booking.ErrGatewayUnavailable, http.StatusServiceUnavailable},
}

func statusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Internal errors are
// logged and their details hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		getLogger(c).Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
