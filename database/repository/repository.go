package repository

import (
	"context"
	"errors"
	"time"

	"github.com/KowsickReddy/TravelGo/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional update matched no record
	// because the record is no longer in the expected state.
	ErrConflict = errors.New("record state changed concurrently")
)

// ServiceRepository persists bookable services.
type ServiceRepository interface {
	Create(ctx context.Context, svc *models.Service) error
	GetByID(ctx context.Context, id string) (*models.Service, error)
	// Search returns active services matching the filter, best rated first.
	Search(ctx context.Context, filter models.ServiceSearch) ([]models.Service, error)
	UpdatePrice(ctx context.Context, id string, price models.Amount) error
	SetActive(ctx context.Context, id string, active bool) error

	// DecrementAvailability subtracts n from the service's availability only if
	// the current availability is at least n. It reports false when the
	// condition did not hold and ErrNotFound when the service does not exist.
	DecrementAvailability(ctx context.Context, id string, n int) (bool, error)
	IncrementAvailability(ctx context.Context, id string, n int) error
}

// BookingRepository persists bookings. Every Mark/Set method is a
// conditional single-row update and returns ErrConflict when the booking is
// not in the state the transition starts from.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Booking, error)

	// SetPaymentOrder records a new payment order on a pending, unpaid booking
	// and resets a failed payment status back to pending.
	SetPaymentOrder(ctx context.Context, id, paymentID, method string, at time.Time) (*models.Booking, error)
	// MarkConfirmed flips a pending booking whose order is paymentID to
	// confirmed/completed and records the transaction.
	MarkConfirmed(ctx context.Context, id, paymentID, transactionID string) (*models.Booking, error)
	// MarkPaymentFailed sets payment_status=failed on a pending booking whose
	// order is paymentID.
	MarkPaymentFailed(ctx context.Context, id, paymentID string) error
	// MarkCancelled cancels a booking that is not cancelled yet and returns
	// the booking as it was before the update.
	MarkCancelled(ctx context.Context, id string) (*models.Booking, error)
	SetRefund(ctx context.Context, id, refundID string) error
	// ListStalePayments returns pending bookings with an outstanding payment
	// order initiated before the cutoff.
	ListStalePayments(ctx context.Context, before time.Time) ([]models.Booking, error)
}

// Transactor runs a function inside one storage transaction. Repository
// calls made with the context passed to fn join that transaction; if fn
// returns an error every write made through it is rolled back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles the repositories of one storage backend.
type Store struct {
	Services ServiceRepository
	Bookings BookingRepository
	Tx       Transactor

	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}
