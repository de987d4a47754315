package models

import "time"

// Service types that can be listed and booked.
const (
	ServiceTypeHotel = "hotel"
	ServiceTypeBus   = "bus"
)

// Service is a bookable hotel or bus listing.
type Service struct {
	ID             string    `bson:"id" json:"id" gorm:"primaryKey;size:36"`
	Title          string    `bson:"title" json:"title" gorm:"size:255;not null"`
	Description    string    `bson:"description,omitempty" json:"description,omitempty"`
	Type           string    `bson:"type" json:"type" gorm:"size:50;not null;index"`
	Location       string    `bson:"location" json:"location" gorm:"size:255;not null"`
	City           string    `bson:"city" json:"city" gorm:"size:100;not null;index"`
	State          string    `bson:"state" json:"state" gorm:"size:100;not null"`
	PricePerPerson Amount    `bson:"price_per_person" json:"price_per_person" gorm:"not null"`
	Currency       string    `bson:"currency" json:"currency" gorm:"size:3;default:INR"`
	Availability   int       `bson:"availability" json:"availability" gorm:"not null;check:availability >= 0"`
	ImageURL       string    `bson:"image_url,omitempty" json:"image_url,omitempty" gorm:"size:500"`
	Rating         float64   `bson:"rating" json:"rating"`
	Amenities      []string  `bson:"amenities,omitempty" json:"amenities,omitempty" gorm:"serializer:json"`
	IsActive       bool      `bson:"is_active" json:"is_active" gorm:"index"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// IsValidServiceType reports whether t is one of the listable service types.
func IsValidServiceType(t string) bool {
	return t == ServiceTypeHotel || t == ServiceTypeBus
}

// Bookable reports whether the service accepts new bookings.
func (s *Service) Bookable() bool {
	return s != nil && s.IsActive
}

// ServiceSearch filters the public listing. Zero values mean "no filter".
type ServiceSearch struct {
	Destination string  `form:"destination" json:"destination,omitempty"`
	City        string  `form:"city" json:"city,omitempty"`
	State       string  `form:"state" json:"state,omitempty"`
	Type        string  `form:"type" json:"type,omitempty"`
	MinPrice    *Amount `form:"-" json:"min_price,omitempty"`
	MaxPrice    *Amount `form:"-" json:"max_price,omitempty"`
	MinRating   float64 `form:"rating" json:"rating,omitempty"`
}

// ServiceInput is the administrative payload used to list a new service.
type ServiceInput struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	Type           string   `json:"type" binding:"required"`
	Location       string   `json:"location" binding:"required"`
	City           string   `json:"city" binding:"required"`
	State          string   `json:"state" binding:"required"`
	PricePerPerson Amount   `json:"price_per_person"`
	Currency       string   `json:"currency"`
	Availability   int      `json:"availability"`
	ImageURL       string   `json:"image_url"`
	Rating         float64  `json:"rating"`
	Amenities      []string `json:"amenities"`
}
