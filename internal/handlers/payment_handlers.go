package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"travel_app_echo/internal/domain"
	"travel_app_echo/internal/models"
	"travel_app_echo/internal/services"
	"travel_app_echo/web/templates/emails"
	"travel_app_echo/web/templates/pages"
)

const (
	msgPaymentSuccessful = "Payment successful. Your booking is confirmed."
	msgPaymentFailed     = "Payment failed."
)

// PaymentFlow is the part of services.PaymentService the handlers use
type PaymentFlow interface {
	InitiatePayment(ctx context.Context, req services.InitiateRequest) (*services.InitiatePaymentResult, error)
	VerifyPayment(ctx context.Context, transactionID string) (*services.VerifyOutcome, error)
	HandleCallback(ctx context.Context, txRef string, payload json.RawMessage) (*services.VerifyOutcome, error)
	GetPayment(ctx context.Context, id uint) (*models.Payment, error)
}

type PaymentHandler struct {
	payments PaymentFlow
}

func NewPaymentHandler(payments PaymentFlow) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type initiatePaymentRequest struct {
	BookingID   uint   `json:"booking_id"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=50"`
}

// Initiate starts a payment for a booking and returns the checkout URL
func (h *PaymentHandler) Initiate(c echo.Context) error {
	var req initiatePaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.payments.InitiatePayment(c.Request().Context(), services.InitiateRequest{
		BookingID: req.BookingID,
		Email:     req.Email,
		Phone:     req.PhoneNumber,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"checkout_url": result.CheckoutURL,
	})
}

// Verify reports whether the transaction was paid
func (h *PaymentHandler) Verify(c echo.Context) error {
	outcome, err := h.payments.VerifyPayment(c.Request().Context(), c.QueryParam("transaction_id"))
	if err != nil {
		return err
	}
	if !outcome.Succeeded {
		return c.JSON(http.StatusBadRequest, map[string]string{"status": msgPaymentFailed})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": msgPaymentSuccessful})
}

// Callback receives the gateway's server-to-server notification
func (h *PaymentHandler) Callback(c echo.Context) error {
	var payload json.RawMessage
	txRef := firstNonEmpty(c.QueryParam("trx_ref"), c.QueryParam("tx_ref"), c.QueryParam("order_id"))

	if c.Request().Method == http.MethodPost {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
		}
		if json.Valid(body) {
			payload = body
			var fields struct {
				TrxRef  string `json:"trx_ref"`
				TxRef   string `json:"tx_ref"`
				OrderID string `json:"order_id"`
			}
			if err := json.Unmarshal(body, &fields); err == nil && txRef == "" {
				txRef = firstNonEmpty(fields.TrxRef, fields.TxRef, fields.OrderID)
			}
		}
	}
	if payload == nil {
		payload, _ = json.Marshal(c.QueryParams())
	}

	if txRef == "" {
		return domain.ValidationError{Field: "tx_ref", Msg: "is required"}
	}

	outcome, err := h.payments.HandleCallback(c.Request().Context(), txRef, payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tx_ref": txRef,
		"status": outcome.Payment.Status,
	})
}

// Return renders the page guests land on after checkout
func (h *PaymentHandler) Return(c echo.Context) error {
	txRef := c.QueryParam("tx_ref")
	props := pages.PaymentReturnProps{
		Title:         "Payment",
		TransactionID: txRef,
	}

	outcome, err := h.payments.VerifyPayment(c.Request().Context(), txRef)
	status := http.StatusOK
	switch {
	case err != nil:
		status, props.Message = returnPageError(err)
		log.Printf("[PAYMENT] Return page for %q: %v", txRef, err)
	case outcome.Succeeded:
		props.Succeeded = true
		props.Message = msgPaymentSuccessful
		props.Amount = emails.FormatAmount(outcome.Payment.Amount, outcome.Payment.Currency)
	default:
		props.Message = msgPaymentFailed
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return pages.PaymentReturn(props).Render(c.Request().Context(), c.Response())
}

func returnPageError(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, "Missing transaction reference."
	case domain.IsNotFound(err):
		return http.StatusNotFound, "We could not find this payment."
	case domain.IsGateway(err):
		return http.StatusOK, "We could not confirm your payment yet. Please refresh this page in a moment."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again later."
	}
}

func (h *PaymentHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	payment, err := h.payments.GetPayment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
