package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestNormalizeChatID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		country  string
		expected string
	}{
		{
			name:     "local number gets country code",
			input:    "0911234567",
			country:  "251",
			expected: "251911234567@c.us",
		},
		{
			name:     "international number",
			input:    "+251911234567",
			country:  "251",
			expected: "251911234567@c.us",
		},
		{
			name:     "group id",
			input:    "120363407813232111@g.us",
			country:  "251",
			expected: "120363407813232111@g.us",
		},
		{
			name:     "local number with suffix",
			input:    "0911234567@c.us",
			country:  "251",
			expected: "251911234567@c.us",
		},
		{
			name:     "formatted number",
			input:    "+62 812-4636-1829",
			country:  "251",
			expected: "6281246361829@c.us",
		},
		{
			name:     "no country code configured",
			input:    "0911234567",
			country:  "",
			expected: "0911234567@c.us",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeChatID(tt.input, tt.country)
			if result != tt.expected {
				t.Errorf("NormalizeChatID(%q) = %q; want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWahaSendMessage(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	var text map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, r.URL.Path)
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("missing api key on %s", r.URL.Path)
		}
		if r.URL.Path == "/api/sendText" {
			json.NewDecoder(r.Body).Decode(&text)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewWahaService(srv.URL+"/", "secret", "251")
	if err := s.SendMessage("0911234567", "hello"); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}

	if len(paths) != 3 || paths[2] != "/api/sendText" {
		t.Fatalf("paths = %v", paths)
	}
	if text["chatId"] != "251911234567@c.us" || text["text"] != "hello" {
		t.Errorf("sendText body = %v", text)
	}
}

func TestWahaSendMessageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if err := NewWahaService(srv.URL, "", "251").SendMessage("0911234567", "hello"); err == nil {
		t.Fatal("expected error on 401")
	}
}
