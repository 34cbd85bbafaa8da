package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindPaymentConfirmation Kind = "payment_confirmation"
	KindBookingConfirmation Kind = "booking_confirmation"
	KindTest                Kind = "test"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsapp Channel = "whatsapp"
)

// Notification is one rendered message waiting for delivery
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	To        string    `json:"to"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	HTMLBody  string    `json:"html_body"`
	TextBody  string    `json:"text_body"`
	Channels  []Channel `json:"channels"`
	Attempt   int       `json:"attempt"`
	CreatedAt time.Time `json:"created_at"`
}

// New builds a notification for the address (and phone, when known)
func New(kind Kind, to, phone, subject, htmlBody, textBody string) Notification {
	channels := []Channel{ChannelEmail}
	if phone != "" {
		channels = append(channels, ChannelWhatsapp)
	}
	return Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		To:        to,
		Phone:     phone,
		Subject:   subject,
		HTMLBody:  htmlBody,
		TextBody:  textBody,
		Channels:  channels,
		Attempt:   1,
		CreatedAt: time.Now(),
	}
}

// Dispatcher hands a notification off for asynchronous delivery.
// Dispatch never reports delivery problems to the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification)
}

// DeliverFunc delivers a notification synchronously
type DeliverFunc func(ctx context.Context, n Notification) error

// FailureFunc is told about a notification whose delivery failed
type FailureFunc func(ctx context.Context, n Notification, err error)

// Discard drops every notification
type Discard struct{}

func (Discard) Dispatch(context.Context, Notification) {}
