package models

// ConfirmationNotice is the payload handed to the notification dispatcher
// once a booking has been confirmed.
type ConfirmationNotice struct {
	Recipient string  `json:"recipient"`
	Booking   Booking `json:"booking"`
	Service   Service `json:"service"`
}
