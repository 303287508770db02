package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the service
type Config struct {
	Port        string
	GinMode     string
	Env         string // "production" toggles secure cookies
	PostgresURL string
	RedisURL    string
	BoltPath    string
	JWTSecret   string
	AppURL      string

	DBMaxConns       int32
	DBAcquireTimeout time.Duration

	CacheTTL       time.Duration
	SessionTTL     time.Duration
	AdminTokenTTL  time.Duration
	MailAPIURL     string
	MailAPIKey     string
	MailFrom       string
	AllowedOrigins []string
	SupportedLangs []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		Env:         getEnv("APP_ENV", "development"),
		PostgresURL: getEnv("POSTGRES_URL", "postgres://localhost:5432/miro_content?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		BoltPath:    getEnv("BOLT_PATH", "data/miro.db"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key"),
		AppURL:      getEnv("APP_URL", "http://localhost:8080"),

		DBMaxConns:       int32(getEnvInt("DB_MAX_CONNS", 20)),
		DBAcquireTimeout: 5 * time.Second,

		CacheTTL:       time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		SessionTTL:     30 * 24 * time.Hour,
		AdminTokenTTL:  24 * time.Hour,
		MailAPIURL:     getEnv("MAIL_API_URL", "https://api.resend.com/emails"),
		MailAPIKey:     os.Getenv("MAIL_API_KEY"),
		MailFrom:       getEnv("MAIL_FROM", "onboarding@resend.dev"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS"),
		SupportedLangs: []string{"ka", "en", "ru"},
	}
}

// IsProduction reports whether the service runs with production hardening
// (secure cookies, terse error messages).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
