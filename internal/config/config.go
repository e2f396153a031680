package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	// PublicURL overrides the scheme and host used to build the shareable page URL.
	PublicURL    string `json:"public_url"`
	CookieSecure bool   `json:"cookie_secure"`

	// Registration API configuration
	APIBaseURL string        `json:"api_base_url"`
	APITimeout time.Duration `json:"api_timeout"`

	// Redis configuration
	RedisURI       string        `json:"redis_uri"`
	RedisPassword  string        `json:"redis_password"`
	RedisDB        int           `json:"redis_db"`
	SessionTTL     time.Duration `json:"session_ttl"`
	SubmitGuardTTL time.Duration `json:"submit_guard_ttl"`

	// SubmitRatePerMinute caps form submissions per client address. Zero disables it.
	SubmitRatePerMinute int `json:"submit_rate_per_minute"`

	// MongoDB configuration (audit trail, optional)
	MongoURI            string `json:"mongo_uri"`
	MongoDatabase       string `json:"mongo_database"`
	AuditLogsCollection string `json:"mongo_audit_logs_collection"`
	AuditWorkers        int    `json:"audit_workers"`
	AuditBufferSize     int    `json:"audit_buffer_size"`

	// Tracing configuration
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`

	// Event configuration
	EventConfigPath string `json:"event_config_path"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	apiTimeout, err := time.ParseDuration(getEnvOrDefault("API_TIMEOUT", "15s"))
	if err != nil {
		return fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnvOrDefault("SESSION_TTL", "2h"))
	if err != nil {
		return fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	// A confirmed registration holds the flag across two sequential API calls,
	// each bounded by API_TIMEOUT.
	submitGuardTTL := 2*apiTimeout + 15*time.Second
	if raw := os.Getenv("SUBMIT_GUARD_TTL"); raw != "" {
		if submitGuardTTL, err = time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid SUBMIT_GUARD_TTL: %w", err)
		}
	}

	apiBaseURL, err := normalizeBaseURL(getEnvOrDefault("API_BASE_URL", "http://localhost:5000"))
	if err != nil {
		return fmt.Errorf("invalid API_BASE_URL: %w", err)
	}

	publicURL := strings.TrimSpace(os.Getenv("PUBLIC_URL"))
	if publicURL != "" {
		if publicURL, err = normalizeBaseURL(publicURL); err != nil {
			return fmt.Errorf("invalid PUBLIC_URL: %w", err)
		}
	}

	AppConfig = &Config{
		// Server configuration
		Port:         port,
		Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
		PublicURL:    publicURL,
		CookieSecure: getEnvAsBoolOrDefault("COOKIE_SECURE", false),

		// Registration API configuration
		APIBaseURL: apiBaseURL,
		APITimeout: apiTimeout,

		// Redis configuration
		RedisURI:       getEnvOrDefault("REDIS_URI", "redis://localhost:6379"),
		RedisPassword:  getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:        redisDB,
		SessionTTL:     sessionTTL,
		SubmitGuardTTL: submitGuardTTL,

		SubmitRatePerMinute: getEnvAsIntOrDefault("SUBMIT_RATE_PER_MINUTE", 20),

		// MongoDB configuration
		MongoURI:            getEnvOrDefault("MONGODB_URI", ""),
		MongoDatabase:       getEnvOrDefault("MONGODB_DATABASE", "inscricoes"),
		AuditLogsCollection: getEnvOrDefault("MONGODB_AUDIT_COLLECTION", "audit_logs"),
		AuditWorkers:        getEnvAsIntOrDefault("AUDIT_WORKERS", 2),
		AuditBufferSize:     getEnvAsIntOrDefault("AUDIT_BUFFER_SIZE", 1000),

		// Tracing configuration
		TracingEnabled:  getEnvAsBoolOrDefault("TRACING_ENABLED", false),
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),

		EventConfigPath: getEnvOrDefault("EVENT_CONFIG_PATH", ""),
	}

	return nil
}

// AuditEnabled reports whether the MongoDB audit trail is configured
func (c *Config) AuditEnabled() bool {
	return c != nil && c.MongoURI != ""
}

// normalizeBaseURL validates an absolute http(s) URL and strips the trailing slash
func normalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns environment variable as int or default if not set or invalid
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault returns environment variable as bool or default if not set or invalid
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
