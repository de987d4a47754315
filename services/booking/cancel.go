package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"
	"github.com/KowsickReddy/TravelGo/services/payment"

	"go.uber.org/zap"
)

// CancelBooking cancels the booking and returns reserved capacity when it
// had been confirmed.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error) {
	b, err := s.ownedBooking(ctx, identity, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == models.BookingStatusCancelled {
		return nil, fmt.Errorf("booking %s: %w", b.ID, ErrAlreadyCancelled)
	}

	var prev *models.Booking
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		p, err := s.bookings.MarkCancelled(txCtx, b.ID)
		if err != nil {
			return err
		}
		if p.Status == models.BookingStatusConfirmed {
			if err := s.ledger.Release(txCtx, p.ServiceID, p.NumberOfPeople); err != nil {
				return err
			}
		}
		prev = p
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("booking %s: %w", b.ID, ErrAlreadyCancelled)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("booking %s: %w", b.ID, ErrNotFound)
		}
		return nil, err
	}

	cancelled := *prev
	cancelled.Status = models.BookingStatusCancelled
	cancelled.UpdatedAt = s.opts.Now()
	s.logger.Info("Booking cancelled",
		zap.String("bookingID", cancelled.ID),
		zap.String("previousStatus", prev.Status),
		zap.Bool("released", prev.Status == models.BookingStatusConfirmed))

	if s.opts.RefundOnCancel && prev.Status == models.BookingStatusConfirmed && prev.PaymentID != nil {
		s.refund(ctx, &cancelled)
	}
	return &cancelled, nil
}

// refund returns a captured payment after a cancellation has committed.
// Failures are logged for manual follow-up and never undo the cancellation.
func (s *DefaultBookingService) refund(ctx context.Context, b *models.Booking) {
	paymentID := *b.PaymentID

	var r *models.Refund
	if payment.IsSynthetic(paymentID) {
		r = payment.NewSyntheticRefund(b.TotalAmount)
	} else {
		var err error
		r, err = s.gateway.Refund(ctx, paymentID, nil)
		if err != nil {
			s.logger.Error("Refund failed, needs manual follow-up",
				zap.String("bookingID", b.ID), zap.String("paymentID", paymentID), zap.Error(err))
			return
		}
	}

	if err := s.bookings.SetRefund(ctx, b.ID, r.RefundID); err != nil {
		s.logger.Error("Failed to record refund",
			zap.String("bookingID", b.ID), zap.String("refundID", r.RefundID), zap.Error(err))
		return
	}
	b.RefundID = &r.RefundID
	s.logger.Info("Refund issued",
		zap.String("bookingID", b.ID), zap.String("refundID", r.RefundID), zap.String("status", r.Status))
}
