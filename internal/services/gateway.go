package services

import (
	"context"
	"encoding/json"
	"fmt"

	"travel_app_echo/internal/config"
	"travel_app_echo/internal/models"
)

// GatewayStatusSuccess is the normalized inner status of a settled transaction
const (
	GatewayStatusSuccess = "success"
	GatewayStatusPending = "pending"
)

type InitializeRequest struct {
	Amount      float64
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	Phone       string
	TxRef       string
	ReturnURL   string
	CallbackURL string
	Title       string
	Description string
}

type InitializeResult struct {
	CheckoutURL string
	// Reference is the transaction reference echoed by the gateway, if any
	Reference string
	Raw       json.RawMessage
}

type VerifyResult struct {
	Status    string
	Amount    float64
	Currency  string
	Reference string
	Raw       json.RawMessage
}

// Succeeded reports whether the gateway settled the transaction
func (r *VerifyResult) Succeeded() bool {
	return r != nil && r.Status == GatewayStatusSuccess
}

// PaymentGateway is a hosted-checkout payment provider
type PaymentGateway interface {
	Name() models.PaymentGateway
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, txRef string) (*VerifyResult, error)
}

// NewPaymentGateway builds the gateway selected by PAYMENT_GATEWAY
func NewPaymentGateway(cfg config.Env) (PaymentGateway, error) {
	switch models.PaymentGateway(cfg.PaymentGateway) {
	case models.PaymentGatewayChapa:
		return NewChapaService(cfg.ChapaBaseURL, cfg.ChapaSecretKey, cfg.GatewayTimeout), nil
	case models.PaymentGatewayMidtrans:
		return NewMidtransService(cfg.MidtransServerKey, cfg.MidtransClientKey, cfg.MidtransIsProduction, cfg.GatewayTimeout), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway %q", cfg.PaymentGateway)
	}
}
