package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"travel_app_echo/internal/domain"
	"travel_app_echo/internal/models"
)

// PaymentRepository stores payment attempts and gateway callbacks
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, translate(err, "payment")
	}
	return &payment, nil
}

// GetActiveByReference returns the pending or completed payment for a booking reference
func (r *PaymentRepository) GetActiveByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("booking_reference = ? AND status <> ?", reference, models.PaymentStatusFailed).
		First(&payment).Error
	if err != nil {
		return nil, translate(err, "payment")
	}
	return &payment, nil
}

// GetByTransactionID loads a payment together with its booking and listing
func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Booking.Listing").
		Where("transaction_id = ?", transactionID).
		First(&payment).Error
	if err != nil {
		return nil, translate(err, "payment")
	}
	return &payment, nil
}

// Create inserts a new payment. A second active payment for the same
// booking reference violates the partial unique index and yields a ConflictError.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	err := r.db.WithContext(ctx).Omit("Booking").Create(payment).Error
	if err != nil {
		if err = translate(err, "payment"); domain.IsConflict(err) {
			return domain.ConflictError{Resource: "payment", Msg: "payment already initiated", Err: err}
		}
		return err
	}
	return nil
}

func (r *PaymentRepository) Save(ctx context.Context, payment *models.Payment) error {
	return translate(r.db.WithContext(ctx).Omit("Booking").Save(payment).Error, "payment")
}

// Transition moves a payment from one status to another only if it is still in
// the expected status. It reports whether this call performed the transition.
func (r *PaymentRepository) Transition(ctx context.Context, id uint, from, to models.PaymentStatus) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if to == models.PaymentStatusCompleted {
		updates["completed_at"] = time.Now()
	}

	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, translate(res.Error, "payment")
	}
	return res.RowsAffected == 1, nil
}

// ListPending returns pending payments with a transaction id created before cutoff
func (r *PaymentRepository) ListPending(ctx context.Context, cutoff time.Time, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND transaction_id IS NOT NULL AND created_at < ?", models.PaymentStatusPending, cutoff).
		Order("created_at asc").
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, translate(err, "payment")
	}
	return payments, nil
}

// RecordCallback stores the raw payload of a gateway callback
func (r *PaymentRepository) RecordCallback(ctx context.Context, history *models.PaymentCallbackHistory) error {
	return translate(r.db.WithContext(ctx).Create(history).Error, "payment callback")
}
