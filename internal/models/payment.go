package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PaymentStatus is the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// Payment is one payment attempt for a booking.
// Only one non-failed row may exist per BookingReference.
type Payment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BookingID        *uint          `gorm:"index" json:"booking_id"`
	BookingReference string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_payments_active_booking_reference,where:status <> 'failed'" json:"booking_reference"`
	TransactionID    *string        `gorm:"type:varchar(100);uniqueIndex" json:"transaction_id"`
	PayerName        string         `gorm:"type:varchar(255)" json:"payer_name"`
	PayerEmail       string         `gorm:"type:varchar(255)" json:"payer_email"`
	PayerPhone       string         `gorm:"type:varchar(50)" json:"payer_phone"`
	Amount           float64        `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency         string         `gorm:"type:varchar(10)" json:"currency"`
	Gateway          PaymentGateway `gorm:"type:varchar(50);not null" json:"gateway"`
	Status           PaymentStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CheckoutURL      string         `gorm:"type:text" json:"checkout_url,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`

	RequestMetadata  json.RawMessage `gorm:"type:jsonb" json:"-"`
	ResponseMetadata json.RawMessage `gorm:"type:jsonb" json:"-"`

	// Relationships
	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnDelete:SET NULL" json:"booking,omitempty"`
}

// TxRef derives the gateway transaction reference from the booking id and the row's creation time
func (p Payment) TxRef() string {
	var bookingID uint
	if p.BookingID != nil {
		bookingID = *p.BookingID
	}
	return fmt.Sprintf("%d-%d", bookingID, p.CreatedAt.UnixMilli())
}
