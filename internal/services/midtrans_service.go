package services

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"travel_app_echo/internal/domain"
	"travel_app_echo/internal/models"
)

// MidtransService uses Snap for checkout and the Core API for status checks
type MidtransService struct {
	SnapClient snap.Client
	CoreClient coreapi.Client
	timeout    time.Duration
}

func NewMidtransService(serverKey, clientKey string, production bool, timeout time.Duration) *MidtransService {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(serverKey, env)

	var c coreapi.Client
	c.New(serverKey, env)

	midtrans.ServerKey = serverKey
	midtrans.ClientKey = clientKey
	midtrans.Environment = env

	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MidtransService{SnapClient: s, CoreClient: c, timeout: timeout}
}

func (s *MidtransService) Name() models.PaymentGateway { return models.PaymentGatewayMidtrans }

// Initialize creates a Snap transaction whose order id is the tx ref
func (s *MidtransService) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	amount := int64(math.Round(req.Amount))
	param := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.TxRef,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.FirstName,
			LName: req.LastName,
			Email: req.Email,
			Phone: req.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.TxRef,
				Name:  req.Title,
				Price: amount,
				Qty:   1,
			},
		},
		Callbacks: &snap.Callbacks{
			Finish: req.ReturnURL,
		},
	}

	resp, err := callWithTimeout(ctx, s.timeout, func() (*snap.Response, error) {
		resp, mErr := s.SnapClient.CreateTransaction(param)
		if mErr != nil {
			return nil, mErr
		}
		return resp, nil
	})
	if err != nil {
		return nil, s.gatewayError("initialize", err)
	}

	raw, _ := json.Marshal(resp)
	return &InitializeResult{
		CheckoutURL: resp.RedirectURL,
		Reference:   req.TxRef,
		Raw:         raw,
	}, nil
}

// Verify checks the order status through the Core API
func (s *MidtransService) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	resp, err := callWithTimeout(ctx, s.timeout, func() (*coreapi.TransactionStatusResponse, error) {
		resp, mErr := s.CoreClient.CheckTransaction(txRef)
		if mErr != nil {
			return nil, mErr
		}
		return resp, nil
	})
	if err != nil {
		return nil, s.gatewayError("verify", err)
	}

	raw, _ := json.Marshal(resp)
	result := &VerifyResult{
		Status:    MidtransStatus(resp.TransactionStatus, resp.FraudStatus),
		Currency:  resp.Currency,
		Reference: resp.OrderID,
		Raw:       raw,
	}
	if amount, err := strconv.ParseFloat(resp.GrossAmount, 64); err == nil {
		result.Amount = amount
	}
	return result, nil
}

// MidtransStatus maps a midtrans transaction status onto the gateway status vocabulary
func MidtransStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "settlement":
		return GatewayStatusSuccess
	case "capture":
		if fraudStatus == "" || fraudStatus == "accept" {
			return GatewayStatusSuccess
		}
		return "challenge"
	default:
		return transactionStatus
	}
}

func (s *MidtransService) gatewayError(op string, err error) error {
	gwErr := domain.GatewayError{Gateway: string(s.Name()), Op: op, Err: err}
	if mErr, ok := err.(*midtrans.Error); ok {
		gwErr.StatusCode = mErr.StatusCode
	}
	return gwErr
}

// callWithTimeout bounds SDK calls that take no context
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
