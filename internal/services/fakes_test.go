package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"travel_app_echo/internal/domain"
	"travel_app_echo/internal/models"
	"travel_app_echo/internal/notifications"
)

type fakeBookings struct {
	byID map[uint]*models.Booking
}

func (f *fakeBookings) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, domain.NotFoundError{Resource: "booking"}
}

func (f *fakeBookings) FindByContact(_ context.Context, email, phone string) (*models.Booking, error) {
	for _, b := range f.byID {
		if b.GuestEmail == email && b.GuestPhone == phone {
			return b, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "booking"}
}

// fakePayments mimics the partial unique index on active booking references
type fakePayments struct {
	mu        sync.Mutex
	rows      map[uint]*models.Payment
	nextID    uint
	writes    int
	callbacks []models.PaymentCallbackHistory
	saveErr   error
	booking   *models.Booking
}

func newFakePayments() *fakePayments {
	return &fakePayments{rows: map[uint]*models.Payment{}}
}

func (f *fakePayments) GetByID(_ context.Context, id uint) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.NotFoundError{Resource: "payment"}
}

func (f *fakePayments) GetActiveByReference(_ context.Context, reference string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.BookingReference == reference && p.Status != models.PaymentStatusFailed {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "payment"}
}

func (f *fakePayments) GetByTransactionID(_ context.Context, transactionID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.TransactionID != nil && *p.TransactionID == transactionID {
			cp := *p
			cp.Booking = f.booking
			return &cp, nil
		}
	}
	return nil, domain.NotFoundError{Resource: "payment"}
}

func (f *fakePayments) Create(_ context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.BookingReference == p.BookingReference && existing.Status != models.PaymentStatusFailed {
			return domain.ConflictError{Resource: "payment", Msg: "payment already initiated"}
		}
	}
	f.nextID++
	f.writes++
	p.ID = f.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.UnixMilli(1730000000000 + int64(f.nextID))
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePayments) Save(_ context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.writes++
	cp := *p
	cp.Booking = nil
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePayments) Transition(_ context.Context, id uint, from, to models.PaymentStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok || p.Status != from {
		return false, nil
	}
	f.writes++
	p.Status = to
	return true, nil
}

func (f *fakePayments) ListPending(_ context.Context, cutoff time.Time, limit int) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.rows {
		if p.Status == models.PaymentStatusPending && p.TransactionID != nil && p.CreatedAt.Before(cutoff) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayments) RecordCallback(_ context.Context, h *models.PaymentCallbackHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, *h)
	return nil
}

func (f *fakePayments) only() []*models.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Payment, 0, len(f.rows))
	for _, p := range f.rows {
		out = append(out, p)
	}
	return out
}

type fakeGateway struct {
	mu          sync.Mutex
	initResult  *InitializeResult
	initErr     error
	verifyStat  string
	verifyErr   error
	initCalls   int
	verifyCalls int
	lastInit    InitializeRequest
}

func (g *fakeGateway) Name() models.PaymentGateway { return models.PaymentGatewayChapa }

func (g *fakeGateway) Initialize(_ context.Context, req InitializeRequest) (*InitializeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls++
	g.lastInit = req
	if g.initErr != nil {
		return nil, g.initErr
	}
	if g.initResult != nil {
		return g.initResult, nil
	}
	return &InitializeResult{CheckoutURL: "https://pay/x", Reference: req.TxRef}, nil
}

func (g *fakeGateway) Verify(_ context.Context, txRef string) (*VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &VerifyResult{Status: g.verifyStat, Reference: txRef}, nil
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []notifications.Notification
}

func (d *fakeDispatcher) Dispatch(_ context.Context, n notifications.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

var errTransport = errors.New("dial tcp: connection refused")
