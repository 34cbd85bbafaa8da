package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travel_app_echo/internal/domain"
	"travel_app_echo/internal/models"
)

// ChapaService talks to the Chapa hosted checkout API
type ChapaService struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewChapaService(baseURL, secretKey string, timeout time.Duration) *ChapaService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ChapaService{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

func (s *ChapaService) Name() models.PaymentGateway { return models.PaymentGatewayChapa }

type chapaCustomization struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type chapaInitializeRequest struct {
	Amount        string             `json:"amount"`
	Currency      string             `json:"currency"`
	Email         string             `json:"email"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	PhoneNumber   string             `json:"phone_number,omitempty"`
	TxRef         string             `json:"tx_ref"`
	ReturnURL     string             `json:"return_url"`
	CallbackURL   string             `json:"callback_url,omitempty"`
	Customization chapaCustomization `json:"customization"`
}

type chapaResponse struct {
	Message string          `json:"message"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

type chapaCheckoutData struct {
	CheckoutURL string `json:"checkout_url"`
	TxRef       string `json:"tx_ref"`
}

type chapaVerifyData struct {
	Status   string      `json:"status"`
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
	TxRef    string      `json:"tx_ref"`
}

// Initialize creates a hosted checkout for req.TxRef
func (s *ChapaService) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	payload := chapaInitializeRequest{
		Amount:      fmt.Sprintf("%.2f", req.Amount),
		Currency:    req.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.Phone,
		TxRef:       req.TxRef,
		ReturnURL:   req.ReturnURL,
		CallbackURL: req.CallbackURL,
		Customization: chapaCustomization{
			Title:       req.Title,
			Description: req.Description,
		},
	}

	resp, raw, err := s.do(ctx, "initialize", http.MethodPost, "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	var data chapaCheckoutData
	if err := json.Unmarshal(resp.Data, &data); err != nil || data.CheckoutURL == "" {
		return nil, domain.GatewayError{Gateway: string(s.Name()), Op: "initialize", Err: fmt.Errorf("response has no checkout url")}
	}

	return &InitializeResult{
		CheckoutURL: data.CheckoutURL,
		Reference:   data.TxRef,
		Raw:         raw,
	}, nil
}

// Verify asks Chapa for the state of txRef. The inner data.status carries the outcome.
func (s *ChapaService) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	resp, raw, err := s.do(ctx, "verify", http.MethodGet, "/transaction/verify/"+url.PathEscape(txRef), nil)
	if err != nil {
		return nil, err
	}

	var data chapaVerifyData
	if len(resp.Data) > 0 && string(resp.Data) != "null" {
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return nil, domain.GatewayError{Gateway: string(s.Name()), Op: "verify", Err: fmt.Errorf("failed to decode data: %w", err)}
		}
	}

	result := &VerifyResult{
		Status:    strings.ToLower(data.Status),
		Currency:  data.Currency,
		Reference: data.TxRef,
		Raw:       raw,
	}
	if amount, err := data.Amount.Float64(); err == nil {
		result.Amount = amount
	}
	return result, nil
}

func (s *ChapaService) do(ctx context.Context, op, method, endpoint string, payload interface{}) (*chapaResponse, json.RawMessage, error) {
	gwErr := func(status int, err error) error {
		return domain.GatewayError{Gateway: string(s.Name()), Op: op, StatusCode: status, Err: err}
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, body)
	if err != nil {
		return nil, nil, gwErr(0, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, nil, gwErr(0, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, nil, gwErr(res.StatusCode, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		log.Printf("[CHAPA] %s %s failed with status %d: %s", method, endpoint, res.StatusCode, string(raw))
		return nil, nil, gwErr(res.StatusCode, nil)
	}

	var decoded chapaResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, nil, gwErr(res.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}
	return &decoded, raw, nil
}
