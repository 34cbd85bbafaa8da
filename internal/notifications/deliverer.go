package notifications

import (
	"context"
	"errors"
	"fmt"
)

// EmailSender sends an HTML email
type EmailSender interface {
	SendEmail(to []string, subject, body string) error
}

// ChatSender sends a plain text chat message
type ChatSender interface {
	SendMessage(chatID, text string) error
}

// DeliveryError lists the channels that failed so a retry can skip the rest
type DeliveryError struct {
	Failed []Channel
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed on %v: %v", e.Failed, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Deliverer sends notifications over every channel they list
type Deliverer struct {
	email EmailSender
	chat  ChatSender
}

// NewDeliverer builds a deliverer; chat may be nil when WhatsApp is not configured
func NewDeliverer(email EmailSender, chat ChatSender) *Deliverer {
	return &Deliverer{email: email, chat: chat}
}

func (d *Deliverer) Deliver(_ context.Context, n Notification) error {
	var failed []Channel
	var errs []error

	for _, ch := range n.Channels {
		var err error
		switch ch {
		case ChannelEmail:
			if n.To == "" {
				continue
			}
			err = d.email.SendEmail([]string{n.To}, n.Subject, n.HTMLBody)
		case ChannelWhatsapp:
			if d.chat == nil || n.Phone == "" {
				continue
			}
			err = d.chat.SendMessage(n.Phone, n.TextBody)
		default:
			err = fmt.Errorf("unsupported channel %q", ch)
		}
		if err != nil {
			failed = append(failed, ch)
			errs = append(errs, fmt.Errorf("%s: %w", ch, err))
		}
	}

	if len(failed) > 0 {
		return &DeliveryError{Failed: failed, Err: errors.Join(errs...)}
	}
	return nil
}
