package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"travel_app_echo/internal/domain"
	"travel_app_echo/internal/models"
	"travel_app_echo/internal/notifications"
	"travel_app_echo/web/templates/emails"
)

// BookingFinder resolves the booking a payment is made for
type BookingFinder interface {
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	FindByContact(ctx context.Context, email, phone string) (*models.Booking, error)
}

// PaymentStore persists payment attempts
type PaymentStore interface {
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetActiveByReference(ctx context.Context, reference string) (*models.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Save(ctx context.Context, payment *models.Payment) error
	Transition(ctx context.Context, id uint, from, to models.PaymentStatus) (bool, error)
	ListPending(ctx context.Context, cutoff time.Time, limit int) ([]models.Payment, error)
	RecordCallback(ctx context.Context, history *models.PaymentCallbackHistory) error
}

type PaymentOptions struct {
	AppURL   string
	Currency string
	// Timeout bounds every gateway round trip
	Timeout time.Duration
}

// PaymentService drives a booking's payment from initiation to a terminal status
type PaymentService struct {
	bookings   BookingFinder
	payments   PaymentStore
	gateway    PaymentGateway
	dispatcher notifications.Dispatcher
	opts       PaymentOptions
	now        func() time.Time
}

func NewPaymentService(bookings BookingFinder, payments PaymentStore, gateway PaymentGateway, dispatcher notifications.Dispatcher, opts PaymentOptions) *PaymentService {
	if dispatcher == nil {
		dispatcher = notifications.Discard{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Currency == "" {
		opts.Currency = "ETB"
	}
	opts.AppURL = strings.TrimRight(opts.AppURL, "/")
	return &PaymentService{
		bookings:   bookings,
		payments:   payments,
		gateway:    gateway,
		dispatcher: dispatcher,
		opts:       opts,
		now:        time.Now,
	}
}

// InitiateRequest identifies a booking by id or by the guest's email and phone
type InitiateRequest struct {
	BookingID uint
	Email     string
	Phone     string
	// Amount zero or below means nights times the nightly price
	Amount float64
}

type InitiatePaymentResult struct {
	Payment     *models.Payment
	CheckoutURL string
}

// VerifyOutcome is the result of a verification. A failed payment is an outcome, not an error.
type VerifyOutcome struct {
	Payment   *models.Payment
	Succeeded bool
	// AlreadyFinal is set when the payment was terminal before this call
	AlreadyFinal bool
	// Pending is set when a re-verification found the checkout still open
	Pending bool
}

// ReverifySummary counts what a re-verification sweep did
type ReverifySummary struct {
	Checked   int `json:"checked"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
	Errors    int `json:"errors"`
}

func (s *PaymentService) ReturnURL(txRef string) string {
	return s.opts.AppURL + "/payments/return/?tx_ref=" + txRef
}

func (s *PaymentService) CallbackURL() string {
	return s.opts.AppURL + "/payments/callback/"
}

func (s *PaymentService) resolveBooking(ctx context.Context, req InitiateRequest) (*models.Booking, error) {
	if req.BookingID != 0 {
		return s.bookings.GetBooking(ctx, req.BookingID)
	}
	email, phone := strings.TrimSpace(req.Email), strings.TrimSpace(req.Phone)
	if email == "" || phone == "" {
		return nil, domain.ValidationError{Field: "booking_id", Msg: "booking_id or both email and phone_number are required"}
	}
	return s.bookings.FindByContact(ctx, email, phone)
}

// InitiatePayment creates a pending payment for the booking and opens a checkout with the gateway
func (s *PaymentService) InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiatePaymentResult, error) {
	booking, err := s.resolveBooking(ctx, req)
	if err != nil {
		return nil, err
	}

	reference := booking.Reference()
	if _, err := s.payments.GetActiveByReference(ctx, reference); err == nil {
		return nil, domain.ConflictError{Resource: "payment", Msg: "payment already initiated"}
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	amount := req.Amount
	if amount <= 0 {
		amount = booking.TotalPrice()
	}
	if amount <= 0 {
		return nil, domain.ValidationError{Field: "amount", Msg: "booking has no payable amount"}
	}
	amount = math.Round(amount*100) / 100

	// The transaction reference is stored with the row so a failed save below
	// never leaves a pending payment that cannot be verified.
	bookingID := booking.ID
	payment := &models.Payment{
		CreatedAt:        s.now(),
		BookingID:        &bookingID,
		BookingReference: reference,
		PayerName:        booking.GuestName,
		PayerEmail:       booking.GuestEmail,
		PayerPhone:       booking.GuestPhone,
		Amount:           amount,
		Currency:         s.opts.Currency,
		Gateway:          s.gateway.Name(),
		Status:           models.PaymentStatusPending,
	}
	txRef := payment.TxRef()
	payment.TransactionID = &txRef
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	first, last := splitName(booking.GuestName)
	initReq := InitializeRequest{
		Amount:      amount,
		Currency:    payment.Currency,
		Email:       booking.GuestEmail,
		FirstName:   first,
		LastName:    last,
		Phone:       booking.GuestPhone,
		TxRef:       txRef,
		ReturnURL:   s.ReturnURL(txRef),
		CallbackURL: s.CallbackURL(),
		Title:       "Booking payment",
		Description: "Payment for " + reference,
	}
	if booking.Listing != nil {
		initReq.Description = "Payment for " + booking.Listing.Title
	}
	if meta, err := json.Marshal(initReq); err != nil {
		log.Printf("[PAYMENT] Failed to encode request metadata for %s: %v", txRef, err)
	} else {
		payment.RequestMetadata = meta
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	result, gwErr := s.gateway.Initialize(gwCtx, initReq)
	if gwErr != nil {
		log.Printf("[PAYMENT] Initialize failed for %s (%s): %v", reference, txRef, gwErr)
		payment.Status = models.PaymentStatusFailed
		if err := s.payments.Save(ctx, payment); err != nil {
			log.Printf("[PAYMENT] Failed to save failed payment %d: %v", payment.ID, err)
			s.abandon(ctx, payment)
		}
		var typed domain.GatewayError
		if !errors.As(gwErr, &typed) {
			gwErr = domain.GatewayError{Gateway: string(s.gateway.Name()), Op: "initialize", Err: gwErr}
		}
		return nil, gwErr
	}

	ref := result.Reference
	if ref == "" {
		ref = txRef
	}
	payment.TransactionID = &ref
	payment.CheckoutURL = result.CheckoutURL
	payment.ResponseMetadata = result.Raw
	if err := s.payments.Save(ctx, payment); err != nil {
		// the checkout URL is never handed out, so the row must not block a new attempt
		s.abandon(ctx, payment)
		return nil, fmt.Errorf("failed to save payment %d: %w", payment.ID, err)
	}

	log.Printf("[PAYMENT] Initiated payment %d for %s (%s)", payment.ID, reference, ref)
	return &InitiatePaymentResult{Payment: payment, CheckoutURL: result.CheckoutURL}, nil
}

// abandon moves a pending payment to failed through the conditional update.
// It is the fallback when a full save of the row did not go through.
func (s *PaymentService) abandon(ctx context.Context, p *models.Payment) {
	if _, err := s.payments.Transition(ctx, p.ID, models.PaymentStatusPending, models.PaymentStatusFailed); err != nil {
		log.Printf("[PAYMENT] Failed to mark payment %d failed: %v", p.ID, err)
	}
}

// VerifyPayment asks the gateway for the outcome of transactionID and records it.
// Terminal payments are returned as stored without contacting the gateway.
func (s *PaymentService) VerifyPayment(ctx context.Context, transactionID string) (*VerifyOutcome, error) {
	return s.verify(ctx, transactionID, false)
}

// verify records the gateway outcome. With keepPending an inner status of
// "pending" leaves the payment untouched, since the guest may still be paying.
func (s *PaymentService) verify(ctx context.Context, transactionID string, keepPending bool) (*VerifyOutcome, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, domain.ValidationError{Field: "transaction_id", Msg: "is required"}
	}

	payment, err := s.payments.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if payment.Status.IsTerminal() {
		return storedOutcome(payment), nil
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	result, err := s.gateway.Verify(gwCtx, transactionID)
	if err != nil {
		log.Printf("[PAYMENT] Verify failed for %s, status left %s: %v", transactionID, payment.Status, err)
		var typed domain.GatewayError
		if !errors.As(err, &typed) {
			err = domain.GatewayError{Gateway: string(s.gateway.Name()), Op: "verify", Err: err}
		}
		return nil, err
	}

	if keepPending && result.Status == GatewayStatusPending {
		log.Printf("[PAYMENT] Payment %d (%s) still pending at the gateway", payment.ID, transactionID)
		return &VerifyOutcome{Payment: payment, Pending: true}, nil
	}

	if result.Succeeded() && result.Amount > 0 && math.Abs(result.Amount-payment.Amount) > 0.009 {
		log.Printf("[PAYMENT] Amount mismatch for %s: expected %.2f, gateway reported %.2f", transactionID, payment.Amount, result.Amount)
	}

	to := models.PaymentStatusFailed
	if result.Succeeded() {
		to = models.PaymentStatusCompleted
	}

	won, err := s.payments.Transition(ctx, payment.ID, models.PaymentStatusPending, to)
	if err != nil {
		return nil, err
	}
	if !won {
		// a concurrent verify got there first
		current, err := s.payments.GetByTransactionID(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		return storedOutcome(current), nil
	}

	payment.Status = to
	if to == models.PaymentStatusCompleted {
		now := s.now()
		payment.CompletedAt = &now
		s.notifyPaymentCompleted(ctx, payment)
	}
	log.Printf("[PAYMENT] Payment %d (%s) is now %s, gateway status %q", payment.ID, transactionID, to, result.Status)

	return &VerifyOutcome{Payment: payment, Succeeded: to == models.PaymentStatusCompleted}, nil
}

func storedOutcome(p *models.Payment) *VerifyOutcome {
	return &VerifyOutcome{
		Payment:      p,
		Succeeded:    p.Status == models.PaymentStatusCompleted,
		AlreadyFinal: true,
	}
}

// HandleCallback records a gateway callback and verifies the referenced transaction.
// The callback's own status is never trusted.
func (s *PaymentService) HandleCallback(ctx context.Context, txRef string, payload json.RawMessage) (*VerifyOutcome, error) {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	history := &models.PaymentCallbackHistory{
		PaymentGateway: s.gateway.Name(),
		TransactionID:  txRef,
		Metadata:       payload,
	}
	if err := s.payments.RecordCallback(ctx, history); err != nil {
		log.Printf("[PAYMENT] Failed to record callback for %s: %v", txRef, err)
	}
	return s.VerifyPayment(ctx, txRef)
}

// ReverifyPending verifies pending payments created more than olderThan ago.
// Checkouts the gateway still reports as pending are left for a later sweep.
func (s *PaymentService) ReverifyPending(ctx context.Context, olderThan time.Duration, limit int) (ReverifySummary, error) {
	var summary ReverifySummary
	if limit <= 0 {
		limit = 50
	}

	pending, err := s.payments.ListPending(ctx, s.now().Add(-olderThan), limit)
	if err != nil {
		return summary, err
	}

	for _, p := range pending {
		if p.TransactionID == nil {
			continue
		}
		summary.Checked++
		outcome, err := s.verify(ctx, *p.TransactionID, true)
		switch {
		case err != nil:
			summary.Errors++
			log.Printf("[PAYMENT] Re-verify of %s failed: %v", *p.TransactionID, err)
		case outcome.Pending:
			summary.Pending++
		case outcome.Succeeded:
			summary.Completed++
		default:
			summary.Failed++
		}
	}
	return summary, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

// notifyPaymentCompleted runs after the completed status is stored
func (s *PaymentService) notifyPaymentCompleted(ctx context.Context, p *models.Payment) {
	props := emails.PaymentConfirmationProps{
		GuestName: p.PayerName,
		Amount:    p.Amount,
		Currency:  p.Currency,
	}
	if p.TransactionID != nil {
		props.TransactionID = *p.TransactionID
	}
	to, phone := p.PayerEmail, p.PayerPhone
	if b := p.Booking; b != nil {
		props.GuestName = b.GuestName
		props.CheckIn = b.CheckIn.Format("2006-01-02")
		props.CheckOut = b.CheckOut.Format("2006-01-02")
		if b.Listing != nil {
			props.ListingTitle = b.Listing.Title
		}
		if b.GuestEmail != "" {
			to = b.GuestEmail
		}
		if b.GuestPhone != "" {
			phone = b.GuestPhone
		}
	}
	if to == "" {
		log.Printf("[PAYMENT] Payment %d has no email to notify", p.ID)
		return
	}

	html, err := emails.Render(ctx, emails.PaymentConfirmation(props))
	if err != nil {
		log.Printf("[PAYMENT] Failed to render confirmation for payment %d: %v", p.ID, err)
		return
	}

	s.dispatcher.Dispatch(ctx, notifications.New(
		notifications.KindPaymentConfirmation,
		to,
		phone,
		"Payment Confirmation",
		html,
		emails.PaymentConfirmationText(props),
	))
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "Guest", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
