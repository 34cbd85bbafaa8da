package models

import (
	"time"
)

// Listing is a property guests can book and review
type Listing struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title         string  `gorm:"type:varchar(255);not null" json:"title"`
	Description   string  `gorm:"type:text" json:"description"`
	PricePerNight float64 `gorm:"type:decimal(10,2);not null" json:"price_per_night"`
	MaxGuests     int     `gorm:"not null" json:"max_guests"`
	Location      string  `gorm:"type:varchar(255)" json:"location"`

	// Relationships; rows go away with the listing
	Bookings []Booking `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"bookings,omitempty"`
	Reviews  []Review  `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
}
