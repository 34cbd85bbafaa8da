package services

import (
	"travel_app_echo/internal/config"
	"travel_app_echo/internal/notifications"
)

// NewDeliverer wires the SMTP sender and, when WAHA_BASE_URL is set, the WhatsApp sender.
func NewDeliverer(cfg config.Env) *notifications.Deliverer {
	email := NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	if cfg.WahaBaseURL == "" {
		return notifications.NewDeliverer(email, nil)
	}
	return notifications.NewDeliverer(email, NewWahaService(cfg.WahaBaseURL, cfg.WahaAPIKey, cfg.WahaCountryCode))
}
