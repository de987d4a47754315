package postgresRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"

	"gorm.io/gorm"
)

// BookingRepo implements repository.BookingRepository with gorm. Each
// transition locks the booking row, checks the starting state and saves.
type BookingRepo struct{ s *Store }

func (r *BookingRepo) Create(ctx context.Context, b *models.Booking) error {
	if err := r.s.db(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *BookingRepo) GetByPaymentID(ctx context.Context, paymentID string) (*models.Booking, error) {
	return r.first(ctx, "payment_id = ?", paymentID)
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	err := r.s.db(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Order("id").Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepo) ListStalePayments(ctx context.Context, before time.Time) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	err := r.s.db(ctx).
		Where("status = ? AND payment_status = ?", models.BookingStatusPending, models.PaymentStatusPending).
		Where("payment_id IS NOT NULL AND payment_initiated_at < ?", before).
		Order("created_at DESC").Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("error finding stale payments: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepo) SetPaymentOrder(ctx context.Context, id, paymentID, method string, at time.Time) (*models.Booking, error) {
	next, _, err := r.transition(ctx, id,
		func(b *models.Booking) bool {
			return b.Status == models.BookingStatusPending && b.PaymentStatus != models.PaymentStatusCompleted
		},
		func(b *models.Booking) {
			b.PaymentID = &paymentID
			b.PaymentMethod = method
			b.PaymentStatus = models.PaymentStatusPending
			b.PaymentInitiatedAt = &at
		})
	return next, err
}

func (r *BookingRepo) MarkConfirmed(ctx context.Context, id, paymentID, transactionID string) (*models.Booking, error) {
	next, _, err := r.transition(ctx, id, awaitingPayment(paymentID), func(b *models.Booking) {
		b.Status = models.BookingStatusConfirmed
		b.PaymentStatus = models.PaymentStatusCompleted
		b.TransactionID = &transactionID
	})
	return next, err
}

func (r *BookingRepo) MarkPaymentFailed(ctx context.Context, id, paymentID string) error {
	_, _, err := r.transition(ctx, id, awaitingPayment(paymentID), func(b *models.Booking) {
		b.PaymentStatus = models.PaymentStatusFailed
	})
	return err
}

func (r *BookingRepo) MarkCancelled(ctx context.Context, id string) (*models.Booking, error) {
	_, prev, err := r.transition(ctx, id,
		func(b *models.Booking) bool { return b.Status != models.BookingStatusCancelled },
		func(b *models.Booking) { b.Status = models.BookingStatusCancelled })
	return prev, err
}

func (r *BookingRepo) SetRefund(ctx context.Context, id, refundID string) error {
	_, _, err := r.transition(ctx, id,
		func(*models.Booking) bool { return true },
		func(b *models.Booking) { b.RefundID = &refundID })
	return err
}

func awaitingPayment(paymentID string) func(*models.Booking) bool {
	return func(b *models.Booking) bool {
		return b.Status == models.BookingStatusPending &&
			b.PaymentStatus != models.PaymentStatusCompleted &&
			b.PaymentID != nil && *b.PaymentID == paymentID
	}
}

// transition returns the booking after and before the update.
func (r *BookingRepo) transition(
	ctx context.Context,
	id string,
	allowed func(*models.Booking) bool,
	mutate func(*models.Booking),
) (*models.Booking, *models.Booking, error) {
	var next, prev models.Booking
	err := r.s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, &prev, id); err != nil {
			return err
		}
		if !allowed(&prev) {
			return repository.ErrConflict
		}
		next = prev
		mutate(&next)
		return tx.Save(&next).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrConflict) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	return &next, &prev, nil
}

func (r *BookingRepo) first(ctx context.Context, query string, arg interface{}) (*models.Booking, error) {
	var b models.Booking
	err := r.s.db(ctx).Where(query, arg).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking: %w", err)
	}
	return &b, nil
}
