package models

import "time"

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// BookingState is the lifecycle position derived from a booking's status fields.
type BookingState string

const (
	StateCreated          BookingState = "created"
	StatePaymentInitiated BookingState = "payment_initiated"
	StateConfirmed        BookingState = "confirmed"
	StatePaymentFailed    BookingState = "payment_failed"
	StateCancelled        BookingState = "cancelled"
)

// Booking represents a user's reservation of a service on a given date.
// TotalAmount is frozen at creation time.
type Booking struct {
	ID                 string     `bson:"id" json:"id" gorm:"primaryKey;size:36"`
	UserID             string     `bson:"user_id" json:"user_id" gorm:"size:64;not null;index"`
	UserEmail          string     `bson:"user_email" json:"-" gorm:"size:255"`
	ServiceID          string     `bson:"service_id" json:"service_id" gorm:"size:36;not null;index"`
	BookingDate        string     `bson:"booking_date" json:"booking_date" gorm:"size:10;not null"`
	NumberOfPeople     int        `bson:"number_of_people" json:"number_of_people" gorm:"not null"`
	TotalAmount        Amount     `bson:"total_amount" json:"total_amount" gorm:"not null"`
	Currency           string     `bson:"currency" json:"currency" gorm:"size:3;default:INR"`
	Status             string     `bson:"status" json:"status" gorm:"size:20;default:pending;index"`
	PaymentStatus      string     `bson:"payment_status" json:"payment_status" gorm:"size:20;default:pending"`
	PaymentID          *string    `bson:"payment_id,omitempty" json:"payment_id,omitempty" gorm:"size:255;index"`
	PaymentMethod      string     `bson:"payment_method,omitempty" json:"payment_method,omitempty" gorm:"size:20"`
	PaymentInitiatedAt *time.Time `bson:"payment_initiated_at,omitempty" json:"payment_initiated_at,omitempty"`
	TransactionID      *string    `bson:"transaction_id,omitempty" json:"transaction_id,omitempty" gorm:"size:255"`
	RefundID           *string    `bson:"refund_id,omitempty" json:"refund_id,omitempty" gorm:"size:255"`
	SpecialRequests    string     `bson:"special_requests,omitempty" json:"special_requests,omitempty" gorm:"type:text"`
	CreatedAt          time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at" json:"updated_at"`
}

// State maps the status pair onto the booking lifecycle.
func (b *Booking) State() BookingState {
	switch {
	case b.Status == BookingStatusCancelled:
		return StateCancelled
	case b.Status == BookingStatusConfirmed:
		return StateConfirmed
	case b.PaymentStatus == PaymentStatusFailed:
		return StatePaymentFailed
	case b.PaymentID != nil && *b.PaymentID != "":
		return StatePaymentInitiated
	default:
		return StateCreated
	}
}

// OutstandingPaymentID returns the current non-failed payment order, if any.
func (b *Booking) OutstandingPaymentID() string {
	if b.PaymentID == nil || b.PaymentStatus == PaymentStatusFailed {
		return ""
	}
	return *b.PaymentID
}

// CreateBookingInput is the request payload for a new booking.
type CreateBookingInput struct {
	ServiceID       string `json:"service_id" binding:"required"`
	BookingDate     string `json:"booking_date" binding:"required"`
	NumberOfPeople  int    `json:"number_of_people" binding:"required"`
	SpecialRequests string `json:"special_requests"`
}

// VerifyPaymentInput carries the gateway references reported by the client.
type VerifyPaymentInput struct {
	PaymentID     string `json:"payment_id" form:"payment_id" binding:"required"`
	TransactionID string `json:"transaction_id" form:"transaction_id" binding:"required"`
}
