package booking

import (
	"context"
	"errors"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) ExpireStalePayments(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.opts.Now().Add(-olderThan)
	stale, err := s.bookings.ListStalePayments(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, b := range stale {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		if b.PaymentID == nil {
			continue
		}
		err := s.bookings.MarkPaymentFailed(ctx, b.ID, *b.PaymentID)
		switch {
		case err == nil:
			expired++
			s.logger.Info("Expired stale payment order",
				zap.String("bookingID", b.ID), zap.String("paymentID", *b.PaymentID))
		case errors.Is(err, repository.ErrConflict):
			// Settled or re-initiated since it was listed.
		default:
			s.logger.Warn("Failed to expire payment order", zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	return expired, nil
}
