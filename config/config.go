package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    string
	LogMode string

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTKey    string
	JWTExpiry time.Duration
	SaltRound int

	LoginBlockDuration time.Duration

	PublicBaseURL string
	CORSOrigins   string

	OrderExpiry        time.Duration
	OrderSweepSchedule string // cron spec, "off" disables the sweep
	TaxRate            float64

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string

	PaymentGatewayURL string
	PaymentGatewayKey string

	RedisAddr string
	CacheTTL  time.Duration
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = FromEnv()

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Emails will be skipped.")
	}
}

// FromEnv builds a Config from the current process environment.
func FromEnv() *Config {
	return &Config{
		Port:    getEnv("PORT", "3000"),
		LogMode: getEnv("LOG_MODE", "development"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "coursemart"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTExpiry: getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		SaltRound: getEnvInt("SALT_ROUND", 12),

		LoginBlockDuration: getEnvDuration("LOGIN_BLOCK_DURATION", 15*time.Minute),

		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),

		OrderExpiry:        getEnvDuration("ORDER_EXPIRY", 24*time.Hour),
		OrderSweepSchedule: getEnv("ORDER_SWEEP_SCHEDULE", "*/15 * * * *"),
		TaxRate:            getEnvFloat("TAX_RATE", 0),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@coursemart.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "CourseMart"),

		PaymentGatewayURL: strings.TrimRight(getEnv("PAYMENT_GATEWAY_URL", ""), "/"),
		PaymentGatewayKey: getEnv("PAYMENT_GATEWAY_KEY", ""),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Error converting environment variable %s to float: %v", key, err)
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
