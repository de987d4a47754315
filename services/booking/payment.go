package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"
	"github.com/KowsickReddy/TravelGo/services/inventory"
	"github.com/KowsickReddy/TravelGo/services/payment"

	"go.uber.org/zap"
)

// InitiatePayment opens a gateway order for the booking and makes it the
// booking's outstanding order. A previous order, failed or not, is abandoned.
func (s *DefaultBookingService) InitiatePayment(ctx context.Context, identity models.Identity, bookingID, method string) (*models.PaymentOrder, error) {
	if !models.IsValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: unsupported payment method %q", ErrInvalidInput, method)
	}
	b, err := s.ownedBooking(ctx, identity, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(b); err != nil {
		return nil, err
	}

	req := models.OrderRequest{
		BookingID: b.ID,
		Amount:    b.TotalAmount,
		Currency:  b.Currency,
		Method:    method,
	}
	order, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		if !errors.Is(err, payment.ErrGatewayUnavailable) {
			err = &payment.GatewayError{Op: "create order", Err: err}
		}
		s.logger.Warn("Payment gateway failed to create order",
			zap.String("bookingID", b.ID), zap.String("method", method), zap.Error(err))
		if !s.opts.FallbackEnabled {
			return nil, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		order = payment.NewSyntheticOrder(req)
		s.logger.Warn("Issued synthetic payment order in degraded mode",
			zap.String("bookingID", b.ID), zap.String("paymentID", order.PaymentID))
	}

	if _, err := s.bookings.SetPaymentOrder(ctx, b.ID, order.PaymentID, method, s.opts.Now()); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, s.conflictError(ctx, b.ID, "")
		}
		return nil, err
	}

	s.logger.Info("Payment initiated",
		zap.String("bookingID", b.ID),
		zap.String("paymentID", order.PaymentID),
		zap.String("method", method),
		zap.Bool("synthetic", order.Synthetic))
	return order, nil
}

// VerifyPayment settles the booking's outstanding order after the client
// reports completion.
func (s *DefaultBookingService) VerifyPayment(ctx context.Context, identity models.Identity, bookingID string, input models.VerifyPaymentInput) (*models.Booking, error) {
	b, err := s.ownedBooking(ctx, identity, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(b); err != nil {
		return nil, err
	}
	if b.PaymentID == nil || *b.PaymentID != input.PaymentID {
		return nil, fmt.Errorf("booking %s: %w", b.ID, ErrPaymentMismatch)
	}
	return s.settle(ctx, b, input.PaymentID, input.TransactionID, identity.Email)
}

func (s *DefaultBookingService) ConfirmPaymentByOrder(ctx context.Context, paymentID, transactionID string) (*models.Booking, error) {
	b, err := s.bookingByOrder(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(b); err != nil {
		return nil, err
	}
	return s.settle(ctx, b, paymentID, transactionID, "")
}

// FailPaymentByOrder marks the order failed unless the gateway reports it
// captured.
func (s *DefaultBookingService) FailPaymentByOrder(ctx context.Context, paymentID string) error {
	b, err := s.bookingByOrder(ctx, paymentID)
	if err != nil {
		return err
	}
	captured, err := s.gateway.VerifyOrder(ctx, paymentID, "")
	if err != nil {
		if !s.opts.FallbackEnabled || !payment.IsSynthetic(paymentID) {
			return fmt.Errorf("booking %s: %w", b.ID, err)
		}
		captured = false
	}
	if captured {
		s.logger.Warn("Ignoring failure report for a captured order",
			zap.String("bookingID", b.ID), zap.String("paymentID", paymentID))
		return fmt.Errorf("booking %s: %w", b.ID, ErrPaymentCaptured)
	}
	if err := s.bookings.MarkPaymentFailed(ctx, b.ID, paymentID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return s.conflictError(ctx, b.ID, paymentID)
		}
		return err
	}
	s.logger.Info("Payment failed by gateway", zap.String("bookingID", b.ID), zap.String("paymentID", paymentID))
	return nil
}

func (s *DefaultBookingService) bookingByOrder(ctx context.Context, paymentID string) (*models.Booking, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("%w: payment_id is required", ErrInvalidInput)
	}
	b, err := s.bookings.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("payment %s: %w", paymentID, ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

// settle asks the gateway whether the order was captured and applies the
// outcome. The gateway is consulted before any transaction is opened.
func (s *DefaultBookingService) settle(ctx context.Context, b *models.Booking, paymentID, transactionID, fallbackEmail string) (*models.Booking, error) {
	verified, err := s.gateway.VerifyOrder(ctx, paymentID, transactionID)
	if err != nil {
		verified = s.opts.FallbackEnabled && payment.IsSynthetic(paymentID)
		s.logger.Warn("Payment gateway failed to verify order",
			zap.String("bookingID", b.ID),
			zap.String("paymentID", paymentID),
			zap.Bool("acceptedSynthetic", verified),
			zap.Error(err))
	}

	if !verified {
		if err := s.bookings.MarkPaymentFailed(ctx, b.ID, paymentID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, s.conflictError(ctx, b.ID, paymentID)
			}
			return nil, err
		}
		s.logger.Info("Payment verification failed", zap.String("bookingID", b.ID), zap.String("paymentID", paymentID))
		return nil, fmt.Errorf("booking %s: %w", b.ID, ErrPaymentVerificationFailed)
	}

	var confirmed *models.Booking
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		updated, err := s.bookings.MarkConfirmed(txCtx, b.ID, paymentID, transactionID)
		if err != nil {
			return err
		}
		if err := s.ledger.Reserve(txCtx, updated.ServiceID, updated.NumberOfPeople); err != nil {
			return err
		}
		confirmed = updated
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrInsufficientAvailability), errors.Is(err, inventory.ErrServiceNotFound):
			return nil, s.rejectCapturedPayment(ctx, b, paymentID, err)
		case errors.Is(err, repository.ErrConflict):
			return nil, s.conflictError(ctx, b.ID, paymentID)
		default:
			return nil, err
		}
	}

	s.logger.Info("Booking confirmed",
		zap.String("bookingID", confirmed.ID),
		zap.String("paymentID", paymentID),
		zap.String("transactionID", transactionID),
		zap.Int("people", confirmed.NumberOfPeople))
	s.notifyConfirmed(ctx, confirmed, fallbackEmail)
	return confirmed, nil
}

// rejectCapturedPayment handles a verified payment whose reservation failed:
// the booking moves to payment failed so the user can retry or cancel.
func (s *DefaultBookingService) rejectCapturedPayment(ctx context.Context, b *models.Booking, paymentID string, cause error) error {
	if err := s.bookings.MarkPaymentFailed(ctx, b.ID, paymentID); err != nil {
		s.logger.Error("Failed to mark payment failed after reservation failure",
			zap.String("bookingID", b.ID), zap.Error(err))
	}
	s.logger.Error("Captured payment could not be honoured, service sold out",
		zap.String("bookingID", b.ID),
		zap.String("serviceID", b.ServiceID),
		zap.String("paymentID", paymentID),
		zap.Error(cause))
	return fmt.Errorf("booking %s: %w: %w", b.ID, ErrServiceUnavailable, cause)
}
