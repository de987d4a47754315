// Package repotest holds the behaviour every repository backend must share.
// Backends call Run from their own tests.
package repotest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises store against the repository contracts. IDs are unique per
// call so backends sharing a database between runs do not collide.
func Run(t *testing.T, store *repository.Store) {
	t.Run("TransactionRollsBackEveryWrite", func(t *testing.T) { transactionRollsBack(t, store) })
	t.Run("TransactionCommitsAndNests", func(t *testing.T) { transactionCommitsAndNests(t, store) })
	t.Run("DecrementAvailabilityNeverGoesNegative", func(t *testing.T) { decrementNeverNegative(t, store) })
	t.Run("ConcurrentDecrementsNeverOversell", func(t *testing.T) { concurrentDecrements(t, store) })
	t.Run("BookingTransitionsAreConditional", func(t *testing.T) { transitionsAreConditional(t, store) })
}

// NewID returns an identifier unique to this test run that fits the
// 36 character id columns.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:24]
}

// SeedService inserts an active hotel with the given availability.
func SeedService(t *testing.T, store *repository.Store, id string, availability int) {
	t.Helper()
	require.NoError(t, store.Services.Create(context.Background(), &models.Service{
		ID:             id,
		Title:          "Hotel " + id,
		Type:           models.ServiceTypeHotel,
		City:           "Jaipur",
		PricePerPerson: 150000,
		Currency:       "INR",
		Availability:   availability,
		IsActive:       true,
	}))
}

func availability(t *testing.T, store *repository.Store, id string) int {
	t.Helper()
	svc, err := store.Services.GetByID(context.Background(), id)
	require.NoError(t, err)
	return svc.Availability
}

func transactionRollsBack(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	serviceID, bookingID := NewID("svc"), NewID("b")
	SeedService(t, store, serviceID, 4)

	boom := errors.New("boom")
	err := store.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		ok, err := store.Services.DecrementAvailability(txCtx, serviceID, 3)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, store.Bookings.Create(txCtx, &models.Booking{
			ID:            bookingID,
			UserID:        "u",
			ServiceID:     serviceID,
			Status:        models.BookingStatusPending,
			PaymentStatus: models.PaymentStatusPending,
			CreatedAt:     time.Now().UTC(),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 4, availability(t, store, serviceID))
	_, err = store.Bookings.GetByID(ctx, bookingID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func transactionCommitsAndNests(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	serviceID := NewID("svc")
	SeedService(t, store, serviceID, 4)

	err := store.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		return store.Tx.WithinTransaction(txCtx, func(inner context.Context) error {
			_, err := store.Services.DecrementAvailability(inner, serviceID, 1)
			return err
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 3, availability(t, store, serviceID))
}

func decrementNeverNegative(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	serviceID := NewID("svc")
	SeedService(t, store, serviceID, 2)

	ok, err := store.Services.DecrementAvailability(ctx, serviceID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Services.DecrementAvailability(ctx, serviceID, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, availability(t, store, serviceID))

	_, err = store.Services.DecrementAvailability(ctx, NewID("missing"), 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func concurrentDecrements(t *testing.T, store *repository.Store) {
	const (
		capacity = 10
		units    = 3
		workers  = 12
	)
	ctx := context.Background()
	serviceID := NewID("svc")
	SeedService(t, store, serviceID, capacity)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var ok bool
			err := store.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
				var err error
				ok, err = store.Services.DecrementAvailability(txCtx, serviceID, units)
				return err
			})
			if err != nil {
				t.Errorf("decrement failed: %v", err)
				return
			}
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity/units, granted)
	assert.Equal(t, capacity%units, availability(t, store, serviceID))
}

func transitionsAreConditional(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	bookingID, paymentID := NewID("b"), NewID("pi")
	require.NoError(t, store.Bookings.Create(ctx, &models.Booking{
		ID:            bookingID,
		UserID:        NewID("u"),
		ServiceID:     NewID("svc"),
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     time.Now().UTC(),
	}))

	_, err := store.Bookings.MarkConfirmed(ctx, bookingID, paymentID, "txn")
	assert.ErrorIs(t, err, repository.ErrConflict, "no order recorded yet")

	at := time.Now().Add(-time.Hour).UTC()
	_, err = store.Bookings.SetPaymentOrder(ctx, bookingID, paymentID, models.PaymentMethodCard, at)
	require.NoError(t, err)

	_, err = store.Bookings.MarkConfirmed(ctx, bookingID, NewID("pi"), "txn")
	assert.ErrorIs(t, err, repository.ErrConflict)

	stale, err := store.Bookings.ListStalePayments(ctx, time.Now())
	require.NoError(t, err)
	assert.True(t, containsBooking(stale, bookingID))

	b, err := store.Bookings.MarkConfirmed(ctx, bookingID, paymentID, "txn")
	require.NoError(t, err)
	assert.Equal(t, models.StateConfirmed, b.State())

	assert.ErrorIs(t, store.Bookings.MarkPaymentFailed(ctx, bookingID, paymentID), repository.ErrConflict)

	prev, err := store.Bookings.MarkCancelled(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, prev.Status)

	_, err = store.Bookings.MarkCancelled(ctx, bookingID)
	assert.ErrorIs(t, err, repository.ErrConflict)

	found, err := store.Bookings.GetByPaymentID(ctx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, bookingID, found.ID)
}

func containsBooking(bookings []models.Booking, id string) bool {
	for _, b := range bookings {
		if b.ID == id {
			return true
		}
	}
	return false
}
