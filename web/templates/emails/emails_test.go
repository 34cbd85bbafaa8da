package emails

import (
	"context"
	"strings"
	"testing"
)

func TestPaymentConfirmationEscapesInput(t *testing.T) {
	html, err := Render(context.Background(), PaymentConfirmation(PaymentConfirmationProps{
		GuestName:     "<script>alert(1)</script>",
		ListingTitle:  "Lake House",
		Amount:        250,
		Currency:      "ETB",
		TransactionID: "42-1730000000000",
	}))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	if strings.Contains(html, "<script>") {
		t.Error("guest name must be escaped")
	}
	for _, want := range []string{"Lake House", "250.00 ETB", "42-1730000000000", "Payment received"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
	if strings.Contains(html, "Check-in") {
		t.Error("empty rows must be skipped")
	}
}

func TestBookingConfirmationText(t *testing.T) {
	got := BookingConfirmationText(BookingConfirmationProps{
		ListingTitle: "Lake House",
		CheckIn:      "2025-03-01",
		CheckOut:     "2025-03-04",
		Guests:       2,
	})
	want := "Thank you for your booking. Details: Lake House, 2025-03-01 to 2025-03-04, 2 guest(s)."
	if got != want {
		t.Errorf("BookingConfirmationText() = %q; want %q", got, want)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{100, "ETB", "100.00 ETB"},
		{99.999, "", "100.00"},
		{0.5, "IDR", "0.50 IDR"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatAmount(%v, %q) = %q; want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestBookingConfirmationRendersDetails(t *testing.T) {
	html, err := Render(context.Background(), BookingConfirmation(BookingConfirmationProps{
		GuestName:    "Abebe & Sara",
		ListingTitle: "Lake House",
		Location:     "Bahir Dar",
		CheckIn:      "2025-03-01",
		CheckOut:     "2025-03-04",
		Guests:       2,
		Nights:       3,
		Total:        300,
	}))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	if !strings.HasPrefix(html, "<!doctype html>") || !strings.HasSuffix(html, "</html>") {
		t.Errorf("email must be wrapped in the layout: %q", html)
	}
	for _, want := range []string{"Hi Abebe &amp; Sara", "Bahir Dar", "<strong>3</strong>", "300.00", "automated message"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}

func TestRenderStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Render(ctx, PaymentConfirmation(PaymentConfirmationProps{GuestName: "x"})); err == nil {
		t.Error("expected context error")
	}
}
