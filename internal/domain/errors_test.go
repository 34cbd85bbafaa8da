package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	base := errors.New("connection reset")

	tests := []struct {
		name       string
		err        error
		wantMsg    string
		validation bool
		notFound   bool
		conflict   bool
		gateway    bool
	}{
		{
			name:       "validation with field",
			err:        ValidationError{Field: "transaction_id", Msg: "is required"},
			wantMsg:    "transaction_id: is required",
			validation: true,
		},
		{
			name:     "not found",
			err:      NotFoundError{Resource: "booking"},
			wantMsg:  "booking not found",
			notFound: true,
		},
		{
			name:     "conflict message only",
			err:      ConflictError{Msg: "payment already initiated"},
			wantMsg:  "payment already initiated",
			conflict: true,
		},
		{
			name:    "gateway with status",
			err:     GatewayError{Gateway: "chapa", Op: "initialize", StatusCode: 401},
			wantMsg: "chapa gateway error during initialize (status 401)",
			gateway: true,
		},
		{
			name:    "wrapped gateway",
			err:     fmt.Errorf("initiate: %w", GatewayError{Op: "verify", Err: base}),
			wantMsg: "initiate: payment gateway error during verify: connection reset",
			gateway: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q; want %q", tt.err.Error(), tt.wantMsg)
			}
			if IsValidation(tt.err) != tt.validation {
				t.Errorf("IsValidation = %v", !tt.validation)
			}
			if IsNotFound(tt.err) != tt.notFound {
				t.Errorf("IsNotFound = %v", !tt.notFound)
			}
			if IsConflict(tt.err) != tt.conflict {
				t.Errorf("IsConflict = %v", !tt.conflict)
			}
			if IsGateway(tt.err) != tt.gateway {
				t.Errorf("IsGateway = %v", !tt.gateway)
			}
		})
	}

	if !errors.Is(fmt.Errorf("x: %w", GatewayError{Err: base}), base) {
		t.Error("GatewayError should unwrap to its cause")
	}
}
