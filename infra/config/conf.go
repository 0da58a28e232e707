package config

import (
	"math/rand"
	"os"
	"strconv"
	"time"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// AppConfig represents the application configuration
type AppConfig struct {
	Port        string
	Environment string

	StoreDriver string
	SQLitePath  string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPass      string
	DBName      string
	DBSSLMode   string
	DBZone      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	OpenSearchURL  string
	OpenSearchUser string
	OpenSearchPass string
	EnableLogging  bool
	LoggingLevel   string

	OTLPEndpoint string

	GatewayTimeout        time.Duration
	RazorpayBaseURL       string
	CashfreeSandboxURL    string
	CashfreeProductionURL string
}

// Load reads the application configuration from the environment
func Load() *AppConfig {
	return &AppConfig{
		Port:        GetEnv("APP_PORT", "9999"),
		Environment: GetEnv("ENVIRONMENT", "development"),

		StoreDriver: GetEnv("STORE_DRIVER", DriverSQLite),
		SQLitePath:  GetEnv("SQLITE_PATH", "./data/funnelpay.db"),
		DBHost:      GetEnv("DB_HOST", "localhost"),
		DBPort:      GetEnv("DB_PORT", "5432"),
		DBUser:      GetEnv("DB_USER", "postgres"),
		DBPass:      GetEnv("DB_PASS", ""),
		DBName:      GetEnv("DB_NAME", "funnelpay"),
		DBSSLMode:   GetEnv("DB_SSL_MODE", "disable"),
		DBZone:      GetEnv("DB_ZONE", "UTC"),

		RedisAddr:     GetEnv("REDIS_ADDR", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),
		CacheTTL:      GetDurationEnv("CACHE_TTL", 60*time.Second),

		OpenSearchURL:  GetEnv("OPENSEARCH_URL", "http://localhost:9200"),
		OpenSearchUser: GetEnv("OPENSEARCH_USER", ""),
		OpenSearchPass: GetEnv("OPENSEARCH_PASSWORD", ""),
		EnableLogging:  GetBoolEnv("ENABLE_OPENSEARCH_LOGGING", false),
		LoggingLevel:   GetEnv("LOGGING_LEVEL", "info"),

		OTLPEndpoint: GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		GatewayTimeout:        GetDurationEnv("GATEWAY_TIMEOUT", 30*time.Second),
		RazorpayBaseURL:       GetEnv("RAZORPAY_BASE_URL", ""),
		CashfreeSandboxURL:    GetEnv("CASHFREE_SANDBOX_URL", ""),
		CashfreeProductionURL: GetEnv("CASHFREE_PRODUCTION_URL", ""),
	}
}

// IsProduction reports whether the service runs in production
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetDurationEnv returns the duration value of an environment variable or a default value
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

const randomCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomString returns a random lower-case base36 string
func RandomString(length int) string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, length)
	for i := range b {
		b[i] = randomCharset[r.Intn(len(randomCharset))]
	}
	return string(b)
}
