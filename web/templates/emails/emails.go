package emails

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/a-h/templ"
)

// PaymentConfirmationProps feeds the payment confirmation email
type PaymentConfirmationProps struct {
	GuestName     string
	ListingTitle  string
	Amount        float64
	Currency      string
	TransactionID string
	CheckIn       string
	CheckOut      string
}

// BookingConfirmationProps feeds the booking confirmation email
type BookingConfirmationProps struct {
	GuestName    string
	ListingTitle string
	Location     string
	CheckIn      string
	CheckOut     string
	Guests       int
	Nights       int
	Total        float64
}

// PaymentConfirmationText is the chat version of PaymentConfirmation
func PaymentConfirmationText(p PaymentConfirmationProps) string {
	return fmt.Sprintf("Hi %s, your payment of %s for %s was received. Transaction: %s",
		p.GuestName, FormatAmount(p.Amount, p.Currency), p.ListingTitle, p.TransactionID)
}

// BookingConfirmationText is the chat version of BookingConfirmation
func BookingConfirmationText(p BookingConfirmationProps) string {
	return fmt.Sprintf("Thank you for your booking. Details: %s, %s to %s, %d guest(s).",
		p.ListingTitle, p.CheckIn, p.CheckOut, p.Guests)
}

// FormatAmount prints an amount with two decimals and an optional currency code
func FormatAmount(amount float64, currency string) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	if currency != "" {
		s += " " + currency
	}
	return s
}

// Render renders a component into a string
func Render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
