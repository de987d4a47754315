package memoryRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/database/repository/repotest"
	"github.com/KowsickReddy/TravelGo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedService(t *testing.T, store *repository.Store, id string, availability int) {
	t.Helper()
	require.NoError(t, store.Services.Create(context.Background(), &models.Service{
		ID:             id,
		Title:          "Hotel " + id,
		Type:           models.ServiceTypeHotel,
		City:           "Jaipur",
		PricePerPerson: 150000,
		Availability:   availability,
		IsActive:       true,
	}))
}

func TestStoreContract(t *testing.T) {
	repotest.Run(t, NewStore())
}

func TestTransactionRollsBackEveryWrite(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedService(t, store, "svc-1", 4)

	boom := errors.New("boom")
	err := store.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		ok, err := store.Services.DecrementAvailability(txCtx, "svc-1", 3)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, store.Bookings.Create(txCtx, &models.Booking{ID: "b-1", UserID: "u", ServiceID: "svc-1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	svc, err := store.Services.GetByID(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 4, svc.Availability)
	_, err = store.Bookings.GetByID(ctx, "b-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTransactionCommitsAndNests(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedService(t, store, "svc-1", 4)

	err := store.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		return store.Tx.WithinTransaction(txCtx, func(inner context.Context) error {
			_, err := store.Services.DecrementAvailability(inner, "svc-1", 1)
			return err
		})
	})
	require.NoError(t, err)

	svc, err := store.Services.GetByID(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, svc.Availability)
}

func TestDecrementAvailabilityNeverGoesNegative(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	seedService(t, store, "svc-1", 2)

	ok, err := store.Services.DecrementAvailability(ctx, "svc-1", 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Services.DecrementAvailability(ctx, "svc-1", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = store.Services.DecrementAvailability(ctx, "missing", 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBookingTransitionsAreConditional(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Bookings.Create(ctx, &models.Booking{
		ID:            "b-1",
		UserID:        "u",
		ServiceID:     "svc-1",
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}))

	_, err := store.Bookings.MarkConfirmed(ctx, "b-1", "pi_1", "txn")
	assert.ErrorIs(t, err, repository.ErrConflict, "no order recorded yet")

	at := time.Now().Add(-time.Hour)
	_, err = store.Bookings.SetPaymentOrder(ctx, "b-1", "pi_1", models.PaymentMethodCard, at)
	require.NoError(t, err)

	_, err = store.Bookings.MarkConfirmed(ctx, "b-1", "pi_other", "txn")
	assert.ErrorIs(t, err, repository.ErrConflict)

	stale, err := store.Bookings.ListStalePayments(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, stale, 1)

	b, err := store.Bookings.MarkConfirmed(ctx, "b-1", "pi_1", "txn")
	require.NoError(t, err)
	assert.Equal(t, models.StateConfirmed, b.State())

	assert.ErrorIs(t, store.Bookings.MarkPaymentFailed(ctx, "b-1", "pi_1"), repository.ErrConflict)

	prev, err := store.Bookings.MarkCancelled(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, prev.Status)

	_, err = store.Bookings.MarkCancelled(ctx, "b-1")
	assert.ErrorIs(t, err, repository.ErrConflict)

	found, err := store.Bookings.GetByPaymentID(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "b-1", found.ID)
}
