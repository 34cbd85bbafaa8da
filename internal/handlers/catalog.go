package handlers

import (
	"context"

	"travel_app_echo/internal/models"
	"travel_app_echo/internal/repository"
	"travel_app_echo/internal/services"
)

// Catalog is the part of services.CatalogService the CRUD handlers use
type Catalog interface {
	ListListings(ctx context.Context, location string, page repository.Page) ([]models.Listing, int64, error)
	GetListing(ctx context.Context, id uint) (*services.ListingDetail, error)
	CreateListing(ctx context.Context, in services.ListingInput) (*models.Listing, error)
	UpdateListing(ctx context.Context, id uint, in services.ListingInput, partial bool) (*models.Listing, error)
	DeleteListing(ctx context.Context, id uint) error

	ListBookings(ctx context.Context, listingID uint, page repository.Page) ([]models.Booking, int64, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	CreateBooking(ctx context.Context, in services.BookingInput) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id uint, in services.BookingInput, partial bool) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id uint) error

	ListReviews(ctx context.Context, listingID uint, page repository.Page) ([]models.Review, int64, error)
	GetReview(ctx context.Context, id uint) (*models.Review, error)
	CreateReview(ctx context.Context, in services.ReviewInput) (*models.Review, error)
	UpdateReview(ctx context.Context, id uint, in services.ReviewInput, partial bool) (*models.Review, error)
	DeleteReview(ctx context.Context, id uint) error
}
