package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"travel_app_echo/internal/domain"
	"travel_app_echo/internal/models"
	"travel_app_echo/internal/notifications"
	"travel_app_echo/internal/repository"
)

// memStore is a tiny in-memory table used by the catalog tests
type memStore[T any] struct {
	rows   map[uint]*T
	nextID uint
	setID  func(*T, uint)
	id     func(*T) uint
	gets   int
}

func newMemStore[T any](setID func(*T, uint), id func(*T) uint) *memStore[T] {
	return &memStore[T]{rows: map[uint]*T{}, setID: setID, id: id}
}

func (m *memStore[T]) get(id uint, resource string) (*T, error) {
	m.gets++
	if v, ok := m.rows[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, domain.NotFoundError{Resource: resource}
}

func (m *memStore[T]) Create(_ context.Context, v *T) error {
	m.nextID++
	m.setID(v, m.nextID)
	cp := *v
	m.rows[m.nextID] = &cp
	return nil
}

func (m *memStore[T]) Save(_ context.Context, v *T) error {
	cp := *v
	m.rows[m.id(v)] = &cp
	return nil
}

func (m *memStore[T]) Delete(_ context.Context, id uint) error {
	if _, ok := m.rows[id]; !ok {
		return domain.NotFoundError{}
	}
	delete(m.rows, id)
	return nil
}

func (m *memStore[T]) all() []T {
	out := make([]T, 0, len(m.rows))
	for i := uint(1); i <= m.nextID; i++ {
		if v, ok := m.rows[i]; ok {
			out = append(out, *v)
		}
	}
	return out
}

type memListings struct{ *memStore[models.Listing] }

func (m memListings) ListListings(context.Context, string, repository.Page) ([]models.Listing, int64, error) {
	all := m.all()
	return all, int64(len(all)), nil
}

func (m memListings) GetListing(_ context.Context, id uint) (*models.Listing, error) {
	return m.get(id, "listing")
}

type memBookings struct{ *memStore[models.Booking] }

func (m memBookings) ListBookings(context.Context, uint, repository.Page) ([]models.Booking, int64, error) {
	all := m.all()
	return all, int64(len(all)), nil
}

func (m memBookings) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	return m.get(id, "booking")
}

type memReviews struct{ *memStore[models.Review] }

func (m memReviews) ListReviews(_ context.Context, listingID uint, _ repository.Page) ([]models.Review, int64, error) {
	var out []models.Review
	for _, r := range m.all() {
		if listingID == 0 || r.ListingID == listingID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (m memReviews) GetReview(_ context.Context, id uint) (*models.Review, error) {
	return m.get(id, "review")
}

func (m memReviews) AverageRating(_ context.Context, listingID uint) (float64, int64, error) {
	var sum, n int
	for _, r := range m.all() {
		if r.ListingID == listingID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), int64(n), nil
}

type memCache struct {
	data map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	v, ok := c.data[key]
	if !ok {
		return errors.New("miss")
	}
	return json.Unmarshal(v, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

type catalogFixture struct {
	svc        *CatalogService
	listings   memListings
	bookings   memBookings
	reviews    memReviews
	cache      *memCache
	dispatcher *fakeDispatcher
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		listings: memListings{newMemStore(func(l *models.Listing, id uint) { l.ID = id }, func(l *models.Listing) uint { return l.ID })},
		bookings: memBookings{newMemStore(func(b *models.Booking, id uint) { b.ID = id }, func(b *models.Booking) uint { return b.ID })},
		reviews:  memReviews{newMemStore(func(r *models.Review, id uint) { r.ID = id }, func(r *models.Review) uint { return r.ID })},
		cache:    &memCache{data: map[string][]byte{}},

		dispatcher: &fakeDispatcher{},
	}
	f.svc = NewCatalogService(f.listings, f.bookings, f.reviews, f.cache, f.dispatcher)
	return f
}

func ptr[T any](v T) *T { return &v }

func (f *catalogFixture) listing(t *testing.T) *models.Listing {
	t.Helper()
	l, err := f.svc.CreateListing(context.Background(), ListingInput{
		Title:         ptr("Lakeside Lodge"),
		PricePerNight: ptr(100.0),
		MaxGuests:     ptr(2),
		Location:      ptr("Bishoftu"),
	})
	if err != nil {
		t.Fatalf("CreateListing error: %v", err)
	}
	return l
}

func TestCreateListingValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    ListingInput
		field string
	}{
		{"missing title", ListingInput{PricePerNight: ptr(1.0), MaxGuests: ptr(1)}, "title"},
		{"zero price", ListingInput{Title: ptr("x"), PricePerNight: ptr(0.0), MaxGuests: ptr(1)}, "price_per_night"},
		{"no guests", ListingInput{Title: ptr("x"), PricePerNight: ptr(10.0), MaxGuests: ptr(0)}, "max_guests"},
		{"blank title", ListingInput{Title: ptr("  "), PricePerNight: ptr(10.0), MaxGuests: ptr(1)}, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCatalogFixture().svc.CreateListing(context.Background(), tt.in)
			var verr domain.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("err = %v; want validation error on %s", err, tt.field)
			}
		})
	}
}

func TestGetListingUsesCache(t *testing.T) {
	f := newCatalogFixture()
	l := f.listing(t)
	ctx := context.Background()

	if _, err := f.svc.GetListing(ctx, l.ID); err != nil {
		t.Fatalf("GetListing error: %v", err)
	}
	gets := f.listings.gets
	detail, err := f.svc.GetListing(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetListing error: %v", err)
	}
	if f.listings.gets != gets {
		t.Error("second read should come from the cache")
	}
	if detail.Title != "Lakeside Lodge" {
		t.Errorf("title = %q", detail.Title)
	}

	if _, err := f.svc.UpdateListing(ctx, l.ID, ListingInput{Title: ptr("Lakeside Lodge II")}, true); err != nil {
		t.Fatalf("UpdateListing error: %v", err)
	}
	detail, _ = f.svc.GetListing(ctx, l.ID)
	if detail.Title != "Lakeside Lodge II" {
		t.Errorf("title after update = %q; cache not invalidated", detail.Title)
	}
}

func TestUpdateListingPutRequiresFields(t *testing.T) {
	f := newCatalogFixture()
	l := f.listing(t)

	_, err := f.svc.UpdateListing(context.Background(), l.ID, ListingInput{Title: ptr("only title")}, false)
	if !domain.IsValidation(err) {
		t.Fatalf("err = %v; want ValidationError", err)
	}
}

func TestCreateBooking(t *testing.T) {
	f := newCatalogFixture()
	l := f.listing(t)

	b, err := f.svc.CreateBooking(context.Background(), BookingInput{
		ListingID:  &l.ID,
		GuestName:  ptr("Abebe Kebede"),
		GuestEmail: ptr("abebe@example.com"),
		Guests:     ptr(2),
		CheckIn:    ptr("2026-11-01"),
		CheckOut:   ptr("2026-11-04"),
	})
	if err != nil {
		t.Fatalf("CreateBooking error: %v", err)
	}
	if b.Nights() != 3 || b.TotalPrice() != 300 {
		t.Errorf("nights = %d total = %.2f", b.Nights(), b.TotalPrice())
	}
	if f.dispatcher.count() != 1 {
		t.Fatalf("notifications = %d; want 1", f.dispatcher.count())
	}
	if n := f.dispatcher.sent[0]; n.Kind != notifications.KindBookingConfirmation || n.To != "abebe@example.com" {
		t.Errorf("notification = %+v", n)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newCatalogFixture()
	l := f.listing(t)
	missing := uint(99)

	tests := []struct {
		name  string
		in    BookingInput
		field string
	}{
		{"missing dates", BookingInput{ListingID: &l.ID, GuestName: ptr("a")}, "check_in"},
		{"bad date", BookingInput{ListingID: &l.ID, GuestName: ptr("a"), CheckIn: ptr("01/11/2026"), CheckOut: ptr("2026-11-02")}, "check_in"},
		{"checkout before checkin", BookingInput{ListingID: &l.ID, GuestName: ptr("a"), CheckIn: ptr("2026-11-02"), CheckOut: ptr("2026-11-02")}, "check_out"},
		{"too many guests", BookingInput{ListingID: &l.ID, GuestName: ptr("a"), Guests: ptr(3), CheckIn: ptr("2026-11-01"), CheckOut: ptr("2026-11-02")}, "guests"},
		{"unknown listing", BookingInput{ListingID: &missing, GuestName: ptr("a"), CheckIn: ptr("2026-11-01"), CheckOut: ptr("2026-11-02")}, "listing_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(context.Background(), tt.in)
			var verr domain.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("err = %v; want validation error on %s", err, tt.field)
			}
		})
	}
	if f.dispatcher.count() != 0 {
		t.Error("rejected bookings must not notify")
	}
}

func TestPatchBookingKeepsOtherFields(t *testing.T) {
	f := newCatalogFixture()
	l := f.listing(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, BookingInput{
		ListingID: &l.ID,
		GuestName: ptr("Abebe"),
		CheckIn:   ptr("2026-11-01"),
		CheckOut:  ptr("2026-11-02"),
	})
	if err != nil {
		t.Fatalf("CreateBooking error: %v", err)
	}

	updated, err := f.svc.UpdateBooking(ctx, b.ID, BookingInput{CheckOut: ptr("2026-11-05")}, true)
	if err != nil {
		t.Fatalf("UpdateBooking error: %v", err)
	}
	if updated.GuestName != "Abebe" || updated.Nights() != 4 {
		t.Errorf("updated = %+v", updated)
	}
	if stored := f.bookings.rows[b.ID]; stored.Listing != nil {
		t.Error("listing association must not be saved with the booking")
	}
}

func TestReviewsUpdateRatingSummary(t *testing.T) {
	f := newCatalogFixture()
	l := f.listing(t)
	ctx := context.Background()

	if _, err := f.svc.GetListing(ctx, l.ID); err != nil {
		t.Fatalf("GetListing error: %v", err)
	}

	for _, rating := range []int{4, 5} {
		if _, err := f.svc.CreateReview(ctx, ReviewInput{ListingID: &l.ID, ReviewerName: ptr("r"), Rating: ptr(rating)}); err != nil {
			t.Fatalf("CreateReview error: %v", err)
		}
	}

	detail, _ := f.svc.GetListing(ctx, l.ID)
	if detail.ReviewCount != 2 || detail.AverageRating != 4.5 {
		t.Errorf("summary = %.1f / %d; want 4.5 / 2", detail.AverageRating, detail.ReviewCount)
	}

	if _, err := f.svc.CreateReview(ctx, ReviewInput{ListingID: &l.ID, ReviewerName: ptr("r"), Rating: ptr(6)}); !domain.IsValidation(err) {
		t.Errorf("rating 6 err = %v; want ValidationError", err)
	}

	if err := f.svc.DeleteReview(ctx, 1); err != nil {
		t.Fatalf("DeleteReview error: %v", err)
	}
	detail, _ = f.svc.GetListing(ctx, l.ID)
	if detail.ReviewCount != 1 {
		t.Errorf("review count = %d; want 1", detail.ReviewCount)
	}
}

func TestDeleteMissingListing(t *testing.T) {
	f := newCatalogFixture()
	if err := f.svc.DeleteListing(context.Background(), 5); !domain.IsNotFound(err) {
		t.Errorf("err = %v; want NotFoundError", err)
	}
}

func TestCatalogWithoutCache(t *testing.T) {
	f := newCatalogFixture()
	f.svc = NewCatalogService(f.listings, f.bookings, f.reviews, nil, nil)
	l := f.listing(t)

	if _, err := f.svc.GetListing(context.Background(), l.ID); err != nil {
		t.Fatalf("GetListing without cache: %v", err)
	}
}
