package models

import (
	"fmt"
	"time"
)

// Booking is a guest's stay at a listing
type Booking struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ListingID  uint      `gorm:"index;not null" json:"listing_id"`
	GuestName  string    `gorm:"type:varchar(255);not null" json:"guest_name"`
	GuestEmail string    `gorm:"type:varchar(255);index:idx_bookings_guest_contact,priority:1" json:"guest_email"`
	GuestPhone string    `gorm:"type:varchar(50);index:idx_bookings_guest_contact,priority:2" json:"guest_phone"`
	Guests     int       `gorm:"default:1" json:"guests"`
	CheckIn    time.Time `gorm:"type:date;not null" json:"check_in"`
	CheckOut   time.Time `gorm:"type:date;not null" json:"check_out"`

	// Relationships
	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
}

// Nights is the number of nights between check-in and check-out
func (b Booking) Nights() int {
	in := time.Date(b.CheckIn.Year(), b.CheckIn.Month(), b.CheckIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(b.CheckOut.Year(), b.CheckOut.Month(), b.CheckOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}

// TotalPrice is nights times the listing's nightly price, zero when the listing is not loaded
func (b Booking) TotalPrice() float64 {
	if b.Listing == nil {
		return 0
	}
	return float64(b.Nights()) * b.Listing.PricePerNight
}

// Reference is the idempotency key used for this booking's payment
func (b Booking) Reference() string {
	return fmt.Sprintf("booking-%d", b.ID)
}
