package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/notes-api-nosql/internal/domain"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppName        string
	AppEnv         string
	StoreDriver    string // "dynamo" or "memory"
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	JWTSecret      string
	JWTExpiry      time.Duration
	OTPTTL         time.Duration
	GoogleClientID string
	SMTPHost       string
	SMTPPort       string
	SMTPFrom       string
	SMTPUsername   string
	SMTPPassword   string
	AllowedOrigins []string // CORS allowed origins
	RateLimitRPS   float64
	RateLimitBurst int
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users string
	Notes string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "5000"),
		AppName:        getEnv("APP_NAME", "Notes App"),
		AppEnv:         getEnv("APP_ENV", "development"),
		StoreDriver:    getEnv("STORE_DRIVER", "dynamo"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users: getEnv("DYNAMO_TABLE_USERS", "users"),
			Notes: getEnv("DYNAMO_TABLE_NOTES", "notes"),
		},
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiry:      time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		OTPTTL:         time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "1025"),
		SMTPFrom:       getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

// Validate reports settings the service cannot run without. A missing JWT
// secret or Google client id is a startup failure, never a per-request one.
func (c *Config) Validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s: %w", strings.Join(missing, ", "), domain.ErrConfiguration)
	}
	if c.StoreDriver != "" && c.StoreDriver != "dynamo" && c.StoreDriver != "memory" {
		return fmt.Errorf("unknown STORE_DRIVER %q: %w", c.StoreDriver, domain.ErrConfiguration)
	}
	if c.JWTExpiry <= 0 || c.OTPTTL <= 0 {
		return fmt.Errorf("token and otp lifetimes must be positive: %w", domain.ErrConfiguration)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
