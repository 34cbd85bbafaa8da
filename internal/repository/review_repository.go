package repository

import (
	"context"

	"gorm.io/gorm"

	"travel_app_echo/internal/models"
)

type ReviewRepository struct {
	crud[models.Review]
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{crud[models.Review]{db: db, resource: "review"}}
}

func (r *ReviewRepository) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	return r.Get(ctx, id)
}

// ListReviews returns a page of reviews; listingID 0 means all listings
func (r *ReviewRepository) ListReviews(ctx context.Context, listingID uint, page Page) ([]models.Review, int64, error) {
	return r.List(ctx, page, func(q *gorm.DB) *gorm.DB {
		if listingID != 0 {
			q = q.Where("listing_id = ?", listingID)
		}
		return q
	})
}

// AverageRating returns the mean rating and review count of a listing
func (r *ReviewRepository) AverageRating(ctx context.Context, listingID uint) (float64, int64, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("listing_id = ?", listingID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, translate(err, r.resource)
	}
	return row.Average, row.Count, nil
}
