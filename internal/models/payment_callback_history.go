package models

import (
	"encoding/json"
	"time"
)

type PaymentGateway string

const (
	PaymentGatewayChapa    PaymentGateway = "chapa"
	PaymentGatewayMidtrans PaymentGateway = "midtrans"
)

// PaymentCallbackHistory keeps every raw callback the gateway sent us
type PaymentCallbackHistory struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	PaymentGateway PaymentGateway  `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	TransactionID  string          `gorm:"type:varchar(100);index" json:"transaction_id"`
	Metadata       json.RawMessage `gorm:"type:jsonb" json:"metadata"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
