package models

import (
	"time"
)

// Review is a rating left on a listing
type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ListingID    uint   `gorm:"index;not null" json:"listing_id"`
	ReviewerName string `gorm:"type:varchar(255);not null" json:"reviewer_name"`
	Rating       int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"` // 1..5
	Comment      string `gorm:"type:text" json:"comment"`
}
