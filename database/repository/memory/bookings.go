package memoryRepo

import (
	"context"
	"sort"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"
)

// BookingRepo is the in-memory BookingRepository. Pointer fields of stored
// bookings are never written through, so shallow copies are safe to return.
type BookingRepo struct{ s *Store }

func (r *BookingRepo) Create(ctx context.Context, b *models.Booking) error {
	tx, unlock := r.s.acquire(ctx)
	defer unlock()

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.s.putBooking(tx, *b)
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	_, unlock := r.s.acquire(ctx)
	defer unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	_, unlock := r.s.acquire(ctx)
	defer unlock()

	out := make([]models.Booking, 0)
	for _, b := range r.s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *BookingRepo) GetByPaymentID(ctx context.Context, paymentID string) (*models.Booking, error) {
	_, unlock := r.s.acquire(ctx)
	defer unlock()

	for _, b := range r.s.bookings {
		if b.PaymentID != nil && *b.PaymentID == paymentID {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *BookingRepo) SetPaymentOrder(ctx context.Context, id, paymentID, method string, at time.Time) (*models.Booking, error) {
	return r.transition(ctx, id,
		func(b models.Booking) bool {
			return b.Status == models.BookingStatusPending && b.PaymentStatus != models.PaymentStatusCompleted
		},
		func(b *models.Booking) {
			b.PaymentID = &paymentID
			b.PaymentMethod = method
			b.PaymentStatus = models.PaymentStatusPending
			b.PaymentInitiatedAt = &at
		})
}

func (r *BookingRepo) MarkConfirmed(ctx context.Context, id, paymentID, transactionID string) (*models.Booking, error) {
	return r.transition(ctx, id,
		func(b models.Booking) bool {
			return b.Status == models.BookingStatusPending &&
				b.PaymentStatus != models.PaymentStatusCompleted &&
				b.PaymentID != nil && *b.PaymentID == paymentID
		},
		func(b *models.Booking) {
			b.Status = models.BookingStatusConfirmed
			b.PaymentStatus = models.PaymentStatusCompleted
			b.TransactionID = &transactionID
		})
}

func (r *BookingRepo) MarkPaymentFailed(ctx context.Context, id, paymentID string) error {
	_, err := r.transition(ctx, id,
		func(b models.Booking) bool {
			return b.Status == models.BookingStatusPending &&
				b.PaymentStatus != models.PaymentStatusCompleted &&
				b.PaymentID != nil && *b.PaymentID == paymentID
		},
		func(b *models.Booking) {
			b.PaymentStatus = models.PaymentStatusFailed
		})
	return err
}

func (r *BookingRepo) MarkCancelled(ctx context.Context, id string) (*models.Booking, error) {
	tx, unlock := r.s.acquire(ctx)
	defer unlock()

	prev, ok := r.s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if prev.Status == models.BookingStatusCancelled {
		return nil, repository.ErrConflict
	}
	next := prev
	next.Status = models.BookingStatusCancelled
	next.UpdatedAt = time.Now()
	r.s.putBooking(tx, next)
	return &prev, nil
}

func (r *BookingRepo) SetRefund(ctx context.Context, id, refundID string) error {
	_, err := r.transition(ctx, id,
		func(models.Booking) bool { return true },
		func(b *models.Booking) { b.RefundID = &refundID })
	return err
}

func (r *BookingRepo) ListStalePayments(ctx context.Context, before time.Time) ([]models.Booking, error) {
	_, unlock := r.s.acquire(ctx)
	defer unlock()

	out := make([]models.Booking, 0)
	for _, b := range r.s.bookings {
		if b.Status == models.BookingStatusPending &&
			b.PaymentStatus == models.PaymentStatusPending &&
			b.PaymentID != nil &&
			b.PaymentInitiatedAt != nil && b.PaymentInitiatedAt.Before(before) {
			out = append(out, b)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// transition applies mutate when allowed holds, atomically with the check.
func (r *BookingRepo) transition(
	ctx context.Context,
	id string,
	allowed func(models.Booking) bool,
	mutate func(*models.Booking),
) (*models.Booking, error) {
	tx, unlock := r.s.acquire(ctx)
	defer unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !allowed(b) {
		return nil, repository.ErrConflict
	}
	mutate(&b)
	b.UpdatedAt = time.Now()
	r.s.putBooking(tx, b)
	return &b, nil
}

func sortNewestFirst(bookings []models.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if !bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
		}
		return bookings[i].ID < bookings[j].ID
	})
}
