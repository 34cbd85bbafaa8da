package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Env holds every setting the binaries read from the environment
type Env struct {
	Port        string
	AppURL      string
	DatabaseURL string
	RedisURL    string

	// Payment gateway
	PaymentGateway string // "chapa" or "midtrans"
	Currency       string
	GatewayTimeout time.Duration

	ChapaBaseURL   string
	ChapaSecretKey string

	MidtransServerKey    string
	MidtransClientKey    string
	MidtransIsProduction bool

	// Notifications
	SMTPHost            string
	SMTPPort            string
	SMTPUser            string
	SMTPPass            string
	EmailFrom           string
	WahaBaseURL         string
	WahaAPIKey          string
	WahaCountryCode     string
	NotificationQueue   string
	NotificationWorkers int

	FirebaseCredentialsPath string

	// Worker
	WorkerTickInterval time.Duration
	ReverifyAfter      time.Duration
}

// Load reads .env (when present) and then the process environment
func Load() Env {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}
	return FromEnvironment()
}

// FromEnvironment builds an Env from the current process environment only
func FromEnvironment() Env {
	return Env{
		Port:        getEnv("PORT", "8080"),
		AppURL:      strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		PaymentGateway: strings.ToLower(getEnv("PAYMENT_GATEWAY", "chapa")),
		Currency:       getEnv("PAYMENT_CURRENCY", "ETB"),
		GatewayTimeout: getDuration("GATEWAY_TIMEOUT", 15*time.Second),

		ChapaBaseURL:   strings.TrimRight(getEnv("CHAPA_BASE_URL", "https://api.chapa.co/v1"), "/"),
		ChapaSecretKey: getEnv("CHAPA_SECRET_KEY", ""),

		MidtransServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransClientKey:    getEnv("MIDTRANS_CLIENT_KEY", ""),
		MidtransIsProduction: getEnv("MIDTRANS_IS_PRODUCTION", "") == "true",

		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnv("SMTP_PORT", "587"),
		SMTPUser:            getEnv("SMTP_USER", ""),
		SMTPPass:            getEnv("SMTP_PASS", ""),
		EmailFrom:           getEnv("EMAIL_FROM", "no-reply@yourdomain.com"),
		WahaBaseURL:         getEnv("WAHA_BASE_URL", ""),
		WahaAPIKey:          getEnv("WAHA_API_KEY", ""),
		WahaCountryCode:     getEnv("WAHA_COUNTRY_CODE", "251"),
		NotificationQueue:   getEnv("NOTIFICATION_QUEUE", "notifications:email"),
		NotificationWorkers: getInt("NOTIFICATION_WORKERS", 4),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),

		WorkerTickInterval: getDuration("WORKER_TICK_INTERVAL", 5*time.Minute),
		ReverifyAfter:      getDuration("REVERIFY_AFTER", 30*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// getDuration accepts Go durations ("15s") or a bare number of seconds
func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	log.Printf("Invalid %s=%q, using %s", key, v, fallback)
	return fallback
}
