// Package notification delivers booking confirmations. Delivery is best
// effort and never feeds back into the booking state.
package notification

import (
	"context"

	"github.com/KowsickReddy/TravelGo/models"
)

// Dispatcher accepts a confirmation notice without blocking the caller.
type Dispatcher interface {
	Dispatch(notice models.ConfirmationNotice)
}

// Sender performs one delivery attempt.
type Sender interface {
	Send(ctx context.Context, notice models.ConfirmationNotice) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, notice models.ConfirmationNotice) error

func (f SenderFunc) Send(ctx context.Context, notice models.ConfirmationNotice) error {
	return f(ctx, notice)
}

// Discard drops every notice. Used when notifications are switched off.
type Discard struct{}

func (Discard) Dispatch(models.ConfirmationNotice) {}
