package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	NATS     NATSConfig
	Registry RegistryConfig
	Triage   TriageConfig
	Reports  ReportsConfig
	Tracing  TracingConfig
	Sentry   SentryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in hours
}

// NATSConfig holds NATS event bus configuration
type NATSConfig struct {
	URL     string
	Enabled bool
}

// RegistryConfig selects the fraud registry backend
type RegistryConfig struct {
	Backend  string // memory, postgres, redis
	SeedDemo bool
}

// TriageConfig holds suspicion triage configuration
type TriageConfig struct {
	Provider         string // rules, http
	URL              string
	APIKey           string
	Timeout          time.Duration
	BreakerInterval  int
	BreakerTimeout   int
	FailureThreshold int
	SuccessThreshold int
}

// ReportsConfig holds report intake configuration
type ReportsConfig struct {
	SuspiciousPolicy string // advisory, review
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRatio  float64
}

// SentryConfig holds Sentry error reporting configuration
type SentryConfig struct {
	DSN string
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 30),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "fraudregistry"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			Expiration: getEnvAsInt("JWT_EXPIRATION", 24),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		Registry: RegistryConfig{
			Backend:  strings.ToLower(getEnv("REGISTRY_BACKEND", "memory")),
			SeedDemo: getEnvAsBool("REGISTRY_SEED_DEMO", false),
		},
		Triage: TriageConfig{
			Provider:         strings.ToLower(getEnv("TRIAGE_PROVIDER", "rules")),
			URL:              getEnv("TRIAGE_URL", ""),
			APIKey:           getEnv("TRIAGE_API_KEY", ""),
			Timeout:          getEnvAsDuration("TRIAGE_TIMEOUT", 10*time.Second),
			BreakerInterval:  getEnvAsInt("TRIAGE_BREAKER_INTERVAL", 60),
			BreakerTimeout:   getEnvAsInt("TRIAGE_BREAKER_TIMEOUT", 30),
			FailureThreshold: getEnvAsInt("TRIAGE_BREAKER_FAILURES", 5),
			SuccessThreshold: getEnvAsInt("TRIAGE_BREAKER_SUCCESSES", 1),
		},
		Reports: ReportsConfig{
			SuspiciousPolicy: strings.ToLower(getEnv("REPORT_SUSPICIOUS_POLICY", "advisory")),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("TRACING_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio:  getEnvAsFloat("TRACING_SAMPLE_RATIO", 1.0),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	switch c.Registry.Backend {
	case "memory", "postgres", "redis":
	default:
		return fmt.Errorf("unsupported REGISTRY_BACKEND %q (memory, postgres, redis)", c.Registry.Backend)
	}

	switch c.Triage.Provider {
	case "rules":
	case "http":
		if c.Triage.URL == "" {
			return fmt.Errorf("TRIAGE_URL is required when TRIAGE_PROVIDER=http")
		}
	default:
		return fmt.Errorf("unsupported TRIAGE_PROVIDER %q (rules, http)", c.Triage.Provider)
	}

	if c.Triage.Timeout <= 0 {
		return fmt.Errorf("TRIAGE_TIMEOUT must be positive")
	}

	switch c.Reports.SuspiciousPolicy {
	case "advisory", "review":
	default:
		return fmt.Errorf("unsupported REPORT_SUSPICIOUS_POLICY %q (advisory, review)", c.Reports.SuspiciousPolicy)
	}

	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form, as expected by migrations
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
