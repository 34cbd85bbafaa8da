package repository

import (
	"context"

	"gorm.io/gorm"

	"travel_app_echo/internal/models"
)

// ListingRepository stores listings
type ListingRepository struct {
	crud[models.Listing]
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{crud[models.Listing]{db: db, resource: "listing"}}
}

// ListListings returns a page of listings, optionally filtered by location
func (r *ListingRepository) ListListings(ctx context.Context, location string, page Page) ([]models.Listing, int64, error) {
	return r.List(ctx, page, func(q *gorm.DB) *gorm.DB {
		if location != "" {
			q = q.Where("location ILIKE ?", "%"+location+"%")
		}
		return q
	})
}

func (r *ListingRepository) GetListing(ctx context.Context, id uint) (*models.Listing, error) {
	return r.Get(ctx, id)
}
