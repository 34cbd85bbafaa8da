package repository

import (
	"context"

	"gorm.io/gorm"

	"travel_app_echo/internal/models"
)

// BookingRepository stores bookings, always loading the booked listing
type BookingRepository struct {
	crud[models.Booking]
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{crud[models.Booking]{db: db, resource: "booking"}}
}

func (r *BookingRepository) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	return r.Get(ctx, id, "Listing")
}

// FindByContact returns the most recent booking made with the given email and phone
func (r *BookingRepository) FindByContact(ctx context.Context, email, phone string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("guest_email = ? AND guest_phone = ?", email, phone).
		Order("created_at desc").
		First(&booking).Error
	if err != nil {
		return nil, translate(err, r.resource)
	}
	return &booking, nil
}

// ListBookings returns a page of bookings; listingID 0 means all listings
func (r *BookingRepository) ListBookings(ctx context.Context, listingID uint, page Page) ([]models.Booking, int64, error) {
	return r.List(ctx, page, func(q *gorm.DB) *gorm.DB {
		if listingID != 0 {
			q = q.Where("listing_id = ?", listingID)
		}
		return q
	})
}
