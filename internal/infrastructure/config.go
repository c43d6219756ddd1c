package infrastructure

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
	Platforms PlatformsConfig
	Plans     PlansConfig
	Admin     AdminConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Environment  string
	LogLevel     string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig holds the identity provider's token verification settings.
// Tokens are minted by the provider; this service only verifies them.
type AuthConfig struct {
	SecretKey string
	Issuer    string
	Audience  string
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled         bool
	ServiceName     string
	ServiceVersion  string
	OTLPEndpoint    string
	MetricsEndpoint string
}

// PlatformsConfig holds upstream platform settings
type PlatformsConfig struct {
	FetchTimeout time.Duration
	UserAgent    string
	// Base URL overrides, empty means the public site
	LeetCodeURL      string
	CodeforcesURL    string
	CodeChefURL      string
	GeeksforGeeksURL string
	HackerRankURL    string
	AtCoderURL       string
}

// PlansConfig holds per-plan platform limits. Zero means unlimited.
type PlansConfig struct {
	FreePlatformLimit int
	ProPlatformLimit  int
}

// AdminConfig holds the admin allowlist
type AdminConfig struct {
	Emails []string
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables with sensible defaults
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 10)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 60)) * time.Second, // sync-all waits on every platform
			Environment:  getEnv("ENVIRONMENT", "development"),
			LogLevel:     getEnv("LOG_LEVEL", ""),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "algotrack"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Auth: AuthConfig{
			SecretKey: getEnv("AUTH_JWT_SECRET", "your-super-secret-key-change-in-production"),
			Issuer:    getEnv("AUTH_JWT_ISSUER", ""),
			Audience:  getEnv("AUTH_JWT_AUDIENCE", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:         getEnvBool("TELEMETRY_ENABLED", true),
			ServiceName:     getEnv("SERVICE_NAME", "algotrack-api"),
			ServiceVersion:  getEnv("SERVICE_VERSION", "1.0.0"),
			OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://otel-collector:4318"),
			MetricsEndpoint: getEnv("METRICS_ENDPOINT", "/metrics"),
		},
		Platforms: PlatformsConfig{
			FetchTimeout:     time.Duration(getEnvInt("PLATFORM_FETCH_TIMEOUT_SECONDS", 12)) * time.Second,
			UserAgent:        getEnv("PLATFORM_USER_AGENT", ""),
			LeetCodeURL:      getEnv("LEETCODE_BASE_URL", ""),
			CodeforcesURL:    getEnv("CODEFORCES_BASE_URL", ""),
			CodeChefURL:      getEnv("CODECHEF_BASE_URL", ""),
			GeeksforGeeksURL: getEnv("GEEKSFORGEEKS_BASE_URL", ""),
			HackerRankURL:    getEnv("HACKERRANK_BASE_URL", ""),
			AtCoderURL:       getEnv("ATCODER_BASE_URL", ""),
		},
		Plans: PlansConfig{
			FreePlatformLimit: getEnvInt("FREE_PLATFORM_LIMIT", 3),
			ProPlatformLimit:  getEnvInt("PRO_PLATFORM_LIMIT", 0),
		},
		Admin: AdminConfig{
			Emails: getEnvList("ADMIN_EMAILS", nil),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blank entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}
