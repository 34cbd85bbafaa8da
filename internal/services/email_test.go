package services

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestEmailServiceRequiresCredentials(t *testing.T) {
	s := NewEmailService("", "587", "", "", "no-reply@example.com")
	if err := s.SendEmail([]string{"guest@example.com"}, "Hi", "body"); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestEmailServiceSends(t *testing.T) {
	s := NewEmailService("smtp.example.com", "587", "user", "pass", "no-reply@example.com")

	var gotAddr, gotFrom string
	var gotMsg []byte
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotMsg = addr, from, msg
		return nil
	}

	if err := s.SendEmail([]string{"guest@example.com"}, "Payment\r\nBcc: x@evil", "<p>ok</p>"); err != nil {
		t.Fatalf("SendEmail error: %v", err)
	}

	if gotAddr != "smtp.example.com:587" || gotFrom != "no-reply@example.com" {
		t.Errorf("addr = %q from = %q", gotAddr, gotFrom)
	}
	msg := string(gotMsg)
	if !strings.Contains(msg, "Content-Type: text/html") {
		t.Error("message must be HTML")
	}
	if strings.Contains(msg, "\r\nBcc:") {
		t.Error("subject must not inject headers")
	}
	if !strings.HasSuffix(msg, "<p>ok</p>\r\n") {
		t.Errorf("unexpected body: %q", msg)
	}
}

func TestEmailServiceWrapsErrors(t *testing.T) {
	s := NewEmailService("smtp.example.com", "587", "user", "pass", "no-reply@example.com")
	cause := errors.New("421 try later")
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return cause }

	if err := s.SendEmail([]string{"guest@example.com"}, "Hi", "body"); !errors.Is(err, cause) {
		t.Fatalf("err = %v; want wrapped cause", err)
	}
}
