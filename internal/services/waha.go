package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WahaService sends WhatsApp messages through a WAHA (WhatsApp HTTP API) instance
type WahaService struct {
	baseURL     string
	apiKey      string
	countryCode string
	client      *http.Client
}

func NewWahaService(baseURL, apiKey, countryCode string) *WahaService {
	return &WahaService{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		countryCode: countryCode,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WahaService) makeRequest(method, endpoint string, payload interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		bodyReader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, s.baseURL+endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// NormalizeChatID turns a guest phone number into a WAHA chat id.
// Local numbers starting with 0 get the default country code; group ids pass through.
func NormalizeChatID(phone, countryCode string) string {
	chatID := strings.TrimSpace(phone)

	if strings.HasSuffix(chatID, "@g.us") {
		return chatID
	}

	chatID = strings.TrimSuffix(chatID, "@c.us")
	chatID = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(chatID)
	chatID = strings.TrimPrefix(chatID, "+")

	if strings.HasPrefix(chatID, "0") && countryCode != "" {
		chatID = countryCode + strings.TrimPrefix(chatID, "0")
	}

	return chatID + "@c.us"
}

// SendMessage shows a short typing indicator and then sends the text
func (s *WahaService) SendMessage(phone, text string) error {
	chatID := NormalizeChatID(phone, s.countryCode)
	session := map[string]string{"chatId": chatID, "session": "default"}

	// typing indicators are cosmetic
	_ = s.makeRequest(http.MethodPost, "/api/startTyping", session)
	time.Sleep(150 * time.Millisecond)
	_ = s.makeRequest(http.MethodPost, "/api/stopTyping", session)

	if err := s.makeRequest(http.MethodPost, "/api/sendText", map[string]string{
		"chatId":  chatID,
		"text":    text,
		"session": "default",
	}); err != nil {
		return fmt.Errorf("failed to send text: %w", err)
	}
	return nil
}
