package booking

import (
	"context"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"
	"github.com/KowsickReddy/TravelGo/services/inventory"
	"github.com/KowsickReddy/TravelGo/services/notification"
	"github.com/KowsickReddy/TravelGo/services/payment"

	"go.uber.org/zap"
)

// BookingService drives a booking from creation through payment to
// confirmation or cancellation.
type BookingService interface {
	CreateBooking(ctx context.Context, identity models.Identity, input models.CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, identity models.Identity) ([]models.Booking, error)

	InitiatePayment(ctx context.Context, identity models.Identity, bookingID, method string) (*models.PaymentOrder, error)
	VerifyPayment(ctx context.Context, identity models.Identity, bookingID string, input models.VerifyPaymentInput) (*models.Booking, error)
	// ConfirmPaymentByOrder and FailPaymentByOrder apply gateway callbacks,
	// which identify the booking by its payment order.
	ConfirmPaymentByOrder(ctx context.Context, paymentID, transactionID string) (*models.Booking, error)
	FailPaymentByOrder(ctx context.Context, paymentID string) error

	CancelBooking(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error)
	// ExpireStalePayments fails payment orders left unverified for longer
	// than olderThan and reports how many were expired.
	ExpireStalePayments(ctx context.Context, olderThan time.Duration) (int, error)
}

// Options are the policy switches of DefaultBookingService.
type Options struct {
	// FallbackEnabled issues synthetic orders when the gateway is down and
	// accepts them on verification. Never enabled in production.
	FallbackEnabled bool
	// RefundOnCancel refunds the captured payment when a confirmed booking
	// is cancelled.
	RefundOnCancel bool
	// DefaultCurrency applies to services listed without a currency code.
	DefaultCurrency string
	Now             func() time.Time
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	bookings   repository.BookingRepository
	services   repository.ServiceRepository
	tx         repository.Transactor
	ledger     inventory.Ledger
	gateway    payment.Gateway
	dispatcher notification.Dispatcher
	logger     *zap.Logger
	opts       Options
}

func NewBookingService(
	store *repository.Store,
	ledger inventory.Ledger,
	gateway payment.Gateway,
	dispatcher notification.Dispatcher,
	logger *zap.Logger,
	opts Options,
) *DefaultBookingService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = models.DefaultCurrency
	}
	if dispatcher == nil {
		dispatcher = notification.Discard{}
	}
	return &DefaultBookingService{
		bookings:   store.Bookings,
		services:   store.Services,
		tx:         store.Tx,
		ledger:     ledger,
		gateway:    gateway,
		dispatcher: dispatcher,
		logger:     logger,
		opts:       opts,
	}
}
