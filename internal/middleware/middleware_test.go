package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"travel_app_echo/internal/domain"
)

type fakeVerifier struct {
	valid string
}

func (f fakeVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if token != f.valid {
		return nil, errors.New("token has expired")
	}
	return &auth.Token{UID: "admin-1", Claims: map[string]interface{}{"email": "admin@example.com"}}, nil
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		verifier TokenVerifier
		header   string
		wantCode int
	}{
		{"not configured", nil, "Bearer good", http.StatusServiceUnavailable},
		{"missing header", fakeVerifier{valid: "good"}, "", http.StatusUnauthorized},
		{"wrong scheme", fakeVerifier{valid: "good"}, "Basic good", http.StatusUnauthorized},
		{"invalid token", fakeVerifier{valid: "good"}, "Bearer bad", http.StatusUnauthorized},
		{"valid token", fakeVerifier{valid: "good"}, "Bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.HTTPErrorHandler = CustomErrorHandler
			e.POST("/api/listings", func(c echo.Context) error {
				if c.Get("userUID") != "admin-1" {
					t.Errorf("userUID = %v", c.Get("userUID"))
				}
				return c.NoContent(http.StatusOK)
			}, RequireAdmin(tt.verifier))

			req := httptest.NewRequest(http.MethodPost, "/api/listings", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d; want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", domain.ValidationError{Field: "transaction_id", Msg: "is required"}, http.StatusBadRequest},
		{"not found", domain.NotFoundError{Resource: "payment"}, http.StatusNotFound},
		{"conflict", domain.ConflictError{Msg: "payment already initiated"}, http.StatusConflict},
		{"gateway", domain.GatewayError{Gateway: "chapa", Op: "initialize"}, http.StatusBadRequest},
		{"echo", echo.NewHTTPError(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _ := StatusFor(tt.err); code != tt.wantCode {
				t.Errorf("StatusFor() = %d; want %d", code, tt.wantCode)
			}
		})
	}
}

func TestCustomErrorHandlerWritesJSON(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/payments/1", nil), rec)

	CustomErrorHandler(domain.NotFoundError{Resource: "payment"}, c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["error"] != "payment not found" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestCustomErrorHandlerHidesInternals(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	CustomErrorHandler(errors.New("pq: password authentication failed"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body == "" || strings.Contains(body, "pq:") {
		t.Errorf("body leaks internals: %s", body)
	}
}

func TestValidator(t *testing.T) {
	type input struct {
		Email string `json:"guest_email" validate:"omitempty,email"`
		Name  string `json:"guest_name" validate:"required"`
	}

	v := NewValidator()
	if err := v.Validate(input{Name: "a"}); err != nil {
		t.Fatalf("valid input: %v", err)
	}

	err := v.Validate(input{Name: "a", Email: "not-an-email"})
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "guest_email" {
		t.Fatalf("err = %v; want ValidationError on guest_email", err)
	}

	err = v.Validate(input{})
	if !errors.As(err, &verr) || verr.Field != "guest_name" || verr.Msg != "is required" {
		t.Fatalf("err = %v; want guest_name is required", err)
	}
}
