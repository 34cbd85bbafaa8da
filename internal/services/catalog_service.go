package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"travel_app_echo/internal/domain"
	"travel_app_echo/internal/models"
	"travel_app_echo/internal/notifications"
	"travel_app_echo/internal/repository"
	"travel_app_echo/web/templates/emails"
)

const (
	dateLayout      = "2006-01-02"
	listingCacheTTL = 10 * time.Minute
)

type ListingStore interface {
	ListListings(ctx context.Context, location string, page repository.Page) ([]models.Listing, int64, error)
	GetListing(ctx context.Context, id uint) (*models.Listing, error)
	Create(ctx context.Context, listing *models.Listing) error
	Save(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id uint) error
}

type BookingStore interface {
	ListBookings(ctx context.Context, listingID uint, page repository.Page) ([]models.Booking, int64, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	Save(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id uint) error
}

type ReviewStore interface {
	ListReviews(ctx context.Context, listingID uint, page repository.Page) ([]models.Review, int64, error)
	GetReview(ctx context.Context, id uint) (*models.Review, error)
	AverageRating(ctx context.Context, listingID uint) (float64, int64, error)
	Create(ctx context.Context, review *models.Review) error
	Save(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uint) error
}

// ListingInput is a create or update request. Nil fields are left untouched on PATCH.
type ListingInput struct {
	Title         *string  `json:"title" validate:"omitempty,max=255"`
	Description   *string  `json:"description"`
	PricePerNight *float64 `json:"price_per_night"`
	MaxGuests     *int     `json:"max_guests"`
	Location      *string  `json:"location" validate:"omitempty,max=255"`
}

type BookingInput struct {
	ListingID  *uint   `json:"listing_id"`
	GuestName  *string `json:"guest_name" validate:"omitempty,max=255"`
	GuestEmail *string `json:"guest_email" validate:"omitempty,email"`
	GuestPhone *string `json:"guest_phone" validate:"omitempty,max=50"`
	Guests     *int    `json:"guests"`
	CheckIn    *string `json:"check_in"`
	CheckOut   *string `json:"check_out"`
}

type ReviewInput struct {
	ListingID    *uint   `json:"listing_id"`
	ReviewerName *string `json:"reviewer_name" validate:"omitempty,max=255"`
	Rating       *int    `json:"rating"`
	Comment      *string `json:"comment"`
}

// ListingDetail is a listing with its review summary
type ListingDetail struct {
	models.Listing
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// CatalogService manages listings, bookings and reviews
type CatalogService struct {
	listings   ListingStore
	bookings   BookingStore
	reviews    ReviewStore
	cache      Cache
	dispatcher notifications.Dispatcher
}

// NewCatalogService wires the stores. cache may be nil.
func NewCatalogService(listings ListingStore, bookings BookingStore, reviews ReviewStore, cache Cache, dispatcher notifications.Dispatcher) *CatalogService {
	if dispatcher == nil {
		dispatcher = notifications.Discard{}
	}
	return &CatalogService{
		listings:   listings,
		bookings:   bookings,
		reviews:    reviews,
		cache:      cache,
		dispatcher: dispatcher,
	}
}

func listingCacheKey(id uint) string {
	return fmt.Sprintf("listing:%d", id)
}

func (s *CatalogService) invalidateListing(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listingCacheKey(id)); err != nil {
		log.Printf("[CACHE] delete %s failed: %v", listingCacheKey(id), err)
	}
}

// Listings

func (s *CatalogService) ListListings(ctx context.Context, location string, page repository.Page) ([]models.Listing, int64, error) {
	return s.listings.ListListings(ctx, strings.TrimSpace(location), page)
}

// GetListing returns the listing with its rating summary, read through the cache
func (s *CatalogService) GetListing(ctx context.Context, id uint) (*ListingDetail, error) {
	detail, err := GetOrSet(s.cache, ctx, listingCacheKey(id), listingCacheTTL, func() (ListingDetail, error) {
		listing, err := s.listings.GetListing(ctx, id)
		if err != nil {
			return ListingDetail{}, err
		}
		avg, count, err := s.reviews.AverageRating(ctx, id)
		if err != nil {
			return ListingDetail{}, err
		}
		return ListingDetail{Listing: *listing, AverageRating: avg, ReviewCount: count}, nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *CatalogService) CreateListing(ctx context.Context, in ListingInput) (*models.Listing, error) {
	var listing models.Listing
	if err := applyListing(&listing, in, false); err != nil {
		return nil, err
	}
	if err := s.listings.Create(ctx, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateListing replaces (partial false) or patches (partial true) a listing
func (s *CatalogService) UpdateListing(ctx context.Context, id uint, in ListingInput, partial bool) (*models.Listing, error) {
	listing, err := s.listings.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyListing(listing, in, partial); err != nil {
		return nil, err
	}
	if err := s.listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	s.invalidateListing(ctx, id)
	return listing, nil
}

// DeleteListing removes a listing; its bookings and reviews go with it
func (s *CatalogService) DeleteListing(ctx context.Context, id uint) error {
	if err := s.listings.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateListing(ctx, id)
	return nil
}

func applyListing(l *models.Listing, in ListingInput, partial bool) error {
	if !partial {
		switch {
		case in.Title == nil:
			return domain.ValidationError{Field: "title", Msg: "is required"}
		case in.PricePerNight == nil:
			return domain.ValidationError{Field: "price_per_night", Msg: "is required"}
		case in.MaxGuests == nil:
			return domain.ValidationError{Field: "max_guests", Msg: "is required"}
		}
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return domain.ValidationError{Field: "title", Msg: "must not be empty"}
		}
		l.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.PricePerNight != nil {
		if *in.PricePerNight <= 0 {
			return domain.ValidationError{Field: "price_per_night", Msg: "must be greater than zero"}
		}
		l.PricePerNight = *in.PricePerNight
	}
	if in.MaxGuests != nil {
		if *in.MaxGuests < 1 {
			return domain.ValidationError{Field: "max_guests", Msg: "must be at least 1"}
		}
		l.MaxGuests = *in.MaxGuests
	}
	if in.Location != nil {
		l.Location = strings.TrimSpace(*in.Location)
	}
	return nil
}

// Bookings

func (s *CatalogService) ListBookings(ctx context.Context, listingID uint, page repository.Page) ([]models.Booking, int64, error) {
	return s.bookings.ListBookings(ctx, listingID, page)
}

func (s *CatalogService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	return s.bookings.GetBooking(ctx, id)
}

// CreateBooking stores a booking and dispatches the booking confirmation email
func (s *CatalogService) CreateBooking(ctx context.Context, in BookingInput) (*models.Booking, error) {
	booking := models.Booking{Guests: 1}
	if err := applyBooking(&booking, in, false); err != nil {
		return nil, err
	}
	listing, err := s.checkBookingListing(ctx, &booking)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Create(ctx, &booking); err != nil {
		return nil, err
	}
	booking.Listing = listing

	s.notifyBookingCreated(ctx, &booking)
	return &booking, nil
}

func (s *CatalogService) UpdateBooking(ctx context.Context, id uint, in BookingInput, partial bool) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyBooking(booking, in, partial); err != nil {
		return nil, err
	}
	listing, err := s.checkBookingListing(ctx, booking)
	if err != nil {
		return nil, err
	}

	// the listing is not ours to save
	booking.Listing = nil
	if err := s.bookings.Save(ctx, booking); err != nil {
		return nil, err
	}
	booking.Listing = listing
	return booking, nil
}

func (s *CatalogService) DeleteBooking(ctx context.Context, id uint) error {
	return s.bookings.Delete(ctx, id)
}

// checkBookingListing loads the booked listing and checks the guest count against it
func (s *CatalogService) checkBookingListing(ctx context.Context, b *models.Booking) (*models.Listing, error) {
	listing, err := s.listings.GetListing(ctx, b.ListingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ValidationError{Field: "listing_id", Msg: "listing does not exist", Err: err}
		}
		return nil, err
	}
	if listing.MaxGuests > 0 && b.Guests > listing.MaxGuests {
		return nil, domain.ValidationError{Field: "guests", Msg: fmt.Sprintf("listing allows at most %d guests", listing.MaxGuests)}
	}
	return listing, nil
}

func applyBooking(b *models.Booking, in BookingInput, partial bool) error {
	if !partial {
		required := []struct {
			field string
			set   bool
		}{
			{"listing_id", in.ListingID != nil},
			{"guest_name", in.GuestName != nil},
			{"check_in", in.CheckIn != nil},
			{"check_out", in.CheckOut != nil},
		}
		for _, r := range required {
			if !r.set {
				return domain.ValidationError{Field: r.field, Msg: "is required"}
			}
		}
	}

	if in.ListingID != nil {
		b.ListingID = *in.ListingID
	}
	if in.GuestName != nil {
		if strings.TrimSpace(*in.GuestName) == "" {
			return domain.ValidationError{Field: "guest_name", Msg: "must not be empty"}
		}
		b.GuestName = strings.TrimSpace(*in.GuestName)
	}
	if in.GuestEmail != nil {
		b.GuestEmail = strings.TrimSpace(*in.GuestEmail)
	}
	if in.GuestPhone != nil {
		b.GuestPhone = strings.TrimSpace(*in.GuestPhone)
	}
	if in.Guests != nil {
		if *in.Guests < 1 {
			return domain.ValidationError{Field: "guests", Msg: "must be at least 1"}
		}
		b.Guests = *in.Guests
	}
	if in.CheckIn != nil {
		d, err := time.Parse(dateLayout, *in.CheckIn)
		if err != nil {
			return domain.ValidationError{Field: "check_in", Msg: "must be a YYYY-MM-DD date", Err: err}
		}
		b.CheckIn = d
	}
	if in.CheckOut != nil {
		d, err := time.Parse(dateLayout, *in.CheckOut)
		if err != nil {
			return domain.ValidationError{Field: "check_out", Msg: "must be a YYYY-MM-DD date", Err: err}
		}
		b.CheckOut = d
	}
	if !b.CheckOut.After(b.CheckIn) {
		return domain.ValidationError{Field: "check_out", Msg: "must be after check_in"}
	}
	return nil
}

func (s *CatalogService) notifyBookingCreated(ctx context.Context, b *models.Booking) {
	if b.GuestEmail == "" {
		return
	}
	props := emails.BookingConfirmationProps{
		GuestName: b.GuestName,
		CheckIn:   b.CheckIn.Format(dateLayout),
		CheckOut:  b.CheckOut.Format(dateLayout),
		Guests:    b.Guests,
		Nights:    b.Nights(),
		Total:     b.TotalPrice(),
	}
	if b.Listing != nil {
		props.ListingTitle = b.Listing.Title
		props.Location = b.Listing.Location
	}

	html, err := emails.Render(ctx, emails.BookingConfirmation(props))
	if err != nil {
		log.Printf("[BOOKING] Failed to render confirmation for booking %d: %v", b.ID, err)
		return
	}
	s.dispatcher.Dispatch(ctx, notifications.New(
		notifications.KindBookingConfirmation,
		b.GuestEmail,
		b.GuestPhone,
		"Booking Confirmation",
		html,
		emails.BookingConfirmationText(props),
	))
}

// Reviews

func (s *CatalogService) ListReviews(ctx context.Context, listingID uint, page repository.Page) ([]models.Review, int64, error) {
	return s.reviews.ListReviews(ctx, listingID, page)
}

func (s *CatalogService) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	return s.reviews.GetReview(ctx, id)
}

func (s *CatalogService) CreateReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	var review models.Review
	if err := applyReview(&review, in, false); err != nil {
		return nil, err
	}
	if _, err := s.listings.GetListing(ctx, review.ListingID); err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ValidationError{Field: "listing_id", Msg: "listing does not exist", Err: err}
		}
		return nil, err
	}
	if err := s.reviews.Create(ctx, &review); err != nil {
		return nil, err
	}
	s.invalidateListing(ctx, review.ListingID)
	return &review, nil
}

func (s *CatalogService) UpdateReview(ctx context.Context, id uint, in ReviewInput, partial bool) (*models.Review, error) {
	review, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := review.ListingID
	if err := applyReview(review, in, partial); err != nil {
		return nil, err
	}
	if err := s.reviews.Save(ctx, review); err != nil {
		return nil, err
	}
	s.invalidateListing(ctx, previous)
	if review.ListingID != previous {
		s.invalidateListing(ctx, review.ListingID)
	}
	return review, nil
}

func (s *CatalogService) DeleteReview(ctx context.Context, id uint) error {
	review, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateListing(ctx, review.ListingID)
	return nil
}

func applyReview(r *models.Review, in ReviewInput, partial bool) error {
	if !partial {
		switch {
		case in.ListingID == nil:
			return domain.ValidationError{Field: "listing_id", Msg: "is required"}
		case in.ReviewerName == nil:
			return domain.ValidationError{Field: "reviewer_name", Msg: "is required"}
		case in.Rating == nil:
			return domain.ValidationError{Field: "rating", Msg: "is required"}
		}
	}
	if in.ListingID != nil {
		r.ListingID = *in.ListingID
	}
	if in.ReviewerName != nil {
		if strings.TrimSpace(*in.ReviewerName) == "" {
			return domain.ValidationError{Field: "reviewer_name", Msg: "must not be empty"}
		}
		r.ReviewerName = strings.TrimSpace(*in.ReviewerName)
	}
	if in.Rating != nil {
		if *in.Rating < 1 || *in.Rating > 5 {
			return domain.ValidationError{Field: "rating", Msg: "must be between 1 and 5"}
		}
		r.Rating = *in.Rating
	}
	if in.Comment != nil {
		r.Comment = *in.Comment
	}
	return nil
}
