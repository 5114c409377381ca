// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultFrontendURL = "https://www.wealthyelephant.com"
	DefaultAdminEmail  = "wealthyelephant@gmail.com"
	DefaultMailFrom    = "onboarding@resend.dev"
)

// Config holds everything the binaries read from the environment.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL string

	JWTSecret string
	JWTExpiry time.Duration

	FrontendURL string
	APIBaseURL  string

	AdminEmail      string
	MailFromAddress string
	SendGridAPIKey  string
	EmailTimeout    time.Duration

	RedisURL     string
	AMQPURL      string
	KafkaBrokers []string
	KafkaTopic   string
	SentryDSN    string

	DefaultPhoneRegion string

	CampaignChunkSize  int
	CampaignChunkDelay time.Duration
	// CampaignSendRate caps emails per second across a send. 0 is unlimited.
	CampaignSendRate int
	SchedulerSpec    string
}

// Load reads the environment. Callers load .env beforehand.
func Load() Config {
	frontend := strings.TrimRight(getEnv("FRONTEND_URL", DefaultFrontendURL), "/")

	return Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "5000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: databaseURL(),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTExpiry: getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),

		FrontendURL: frontend,
		APIBaseURL:  strings.TrimRight(getEnv("API_BASE_URL", frontend), "/"),

		AdminEmail:      getEnv("ADMIN_EMAIL", DefaultAdminEmail),
		MailFromAddress: getEnv("MAIL_FROM_ADDRESS", DefaultMailFrom),
		SendGridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		EmailTimeout:    getEnvAsDuration("EMAIL_SEND_TIMEOUT", 10*time.Second),

		RedisURL:     os.Getenv("REDIS_URL"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		KafkaBrokers: getEnvAsList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "wealthyelephant.events"),
		SentryDSN:    os.Getenv("SENTRY_DSN"),

		DefaultPhoneRegion: getEnv("DEFAULT_PHONE_REGION", "KE"),

		CampaignChunkSize:  getEnvAsInt("CAMPAIGN_CHUNK_SIZE", 50),
		CampaignChunkDelay: getEnvAsDuration("CAMPAIGN_CHUNK_DELAY", time.Second),
		CampaignSendRate:   getEnvAsInt("CAMPAIGN_SEND_RATE", 0),
		SchedulerSpec:      getEnv("SCHEDULER_SPEC", "@every 1m"),
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL or DB_* variables are required")
	}
	// the send guard must be shared with the worker process
	if c.AMQPURL != "" && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when AMQP_URL is set")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// AllowedOrigins is the CORS allow-list.
func (c Config) AllowedOrigins() []string {
	return []string{
		c.FrontendURL,
		"http://localhost:3000",
		"http://localhost:5173",
		"http://localhost:5174",
	}
}

func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		host,
		getEnv("DB_PORT", "5432"),
		os.Getenv("DB_NAME"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
