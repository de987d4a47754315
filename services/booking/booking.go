package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"
	"github.com/KowsickReddy/TravelGo/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const bookingDateLayout = "2006-01-02"

// CreateBooking records a booking in the created state. Availability is
// checked but not reserved; capacity is only taken when payment is verified.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, identity models.Identity, input models.CreateBookingInput) (*models.Booking, error) {
	if input.NumberOfPeople <= 0 {
		return nil, fmt.Errorf("%w: number_of_people must be positive", ErrInvalidInput)
	}
	date := strings.TrimSpace(input.BookingDate)
	if _, err := time.Parse(bookingDateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: booking_date must be YYYY-MM-DD", ErrInvalidInput)
	}

	svc, err := s.services.GetByID(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("service %s: %w", input.ServiceID, ErrNotFound)
		}
		return nil, err
	}
	if !svc.IsActive {
		return nil, fmt.Errorf("service %s: %w", input.ServiceID, ErrNotFound)
	}
	if svc.Availability < input.NumberOfPeople {
		return nil, fmt.Errorf("service %s has %d places left: %w", svc.ID, svc.Availability, ErrInsufficientAvailability)
	}

	total, err := svc.PricePerPerson.Mul(input.NumberOfPeople)
	if err != nil {
		return nil, fmt.Errorf("%w: total for %d people: %v", ErrInvalidInput, input.NumberOfPeople, err)
	}

	currency := svc.Currency
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}
	now := s.opts.Now()
	b := &models.Booking{
		ID:              uuid.New().String(),
		UserID:          identity.ID,
		UserEmail:       identity.Email,
		ServiceID:       svc.ID,
		BookingDate:     date,
		NumberOfPeople:  input.NumberOfPeople,
		TotalAmount:     total,
		Currency:        currency,
		Status:          models.BookingStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		SpecialRequests: input.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.String("bookingID", b.ID),
		zap.String("userID", b.UserID),
		zap.String("serviceID", b.ServiceID),
		zap.Int("people", b.NumberOfPeople),
		zap.String("total", b.TotalAmount.String()))
	return b, nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error) {
	return s.ownedBooking(ctx, identity, bookingID)
}

func (s *DefaultBookingService) ListBookings(ctx context.Context, identity models.Identity) ([]models.Booking, error) {
	return s.bookings.ListByUser(ctx, identity.ID)
}

// ownedBooking loads a booking and hides it from everyone but its owner.
func (s *DefaultBookingService) ownedBooking(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		return nil, err
	}
	if b.UserID != identity.ID {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	return b, nil
}

// checkPayable rejects bookings that can no longer take a payment.
func checkPayable(b *models.Booking) error {
	if b.Status == models.BookingStatusCancelled {
		return fmt.Errorf("booking %s: %w", b.ID, ErrAlreadyCancelled)
	}
	if b.PaymentStatus == models.PaymentStatusCompleted || b.Status == models.BookingStatusConfirmed {
		return fmt.Errorf("booking %s: %w", b.ID, ErrAlreadyPaid)
	}
	return nil
}

// conflictError explains why a conditional update on the booking did not
// apply by looking at its current state.
func (s *DefaultBookingService) conflictError(ctx context.Context, bookingID, paymentID string) error {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		return err
	}
	if err := checkPayable(current); err != nil {
		return err
	}
	if paymentID != "" && (current.PaymentID == nil || *current.PaymentID != paymentID) {
		return fmt.Errorf("booking %s: %w", bookingID, ErrPaymentMismatch)
	}
	return fmt.Errorf("booking %s: %w", bookingID, repository.ErrConflict)
}

func (s *DefaultBookingService) notifyConfirmed(ctx context.Context, b *models.Booking, fallbackEmail string) {
	recipient := b.UserEmail
	if recipient == "" {
		recipient = fallbackEmail
	}
	if recipient == "" {
		s.logger.Warn("No recipient for booking confirmation", zap.String("bookingID", b.ID))
		return
	}

	svc, err := s.services.GetByID(ctx, b.ServiceID)
	if err != nil {
		s.logger.Warn("Could not load service for confirmation",
			zap.String("bookingID", b.ID), zap.Error(err))
		svc = &models.Service{ID: b.ServiceID}
	}
	s.dispatcher.Dispatch(models.ConfirmationNotice{
		Recipient: recipient,
		Booking:   *b,
		Service:   *svc,
	})
}
