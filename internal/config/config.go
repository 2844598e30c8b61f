package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the server needs, loaded once at startup.
type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	OpenAIAPIKey   string
	AllowedOrigins string
	UploadDir      string
	PublicBaseURL  string

	// Redis-backed rate limiting for the auth routes. Disabled when Addr is empty.
	RedisAddr      string
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Outbound mail for password resets. Reset links are only logged when unset.
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// Load reads configuration from the environment, loading a .env file first
// if one is present. DATABASE_URL and JWT_SECRET are mandatory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           envOr("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       envDuration("JWT_EXPIRES_IN", 24*time.Hour),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		UploadDir:      envOr("UPLOAD_DIR", "uploads"),
		PublicBaseURL:  envOr("PUBLIC_BASE_URL", "http://localhost:8080"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: envDuration("AUTH_RATE_WINDOW", time.Hour),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       envOr("SMTP_PORT", "587"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		SMTPFrom:       envOr("SMTP_FROM", "Finance SaaS <no-reply@financesaas.com>"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
