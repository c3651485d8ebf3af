package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultApprovalsHost is the hosted approvals service used when no host is configured.
const DefaultApprovalsHost = "https://product-approvals-gf3dkeclfa-ww.a.run.app"

// ApprovalsConfig holds the remote approvals API settings.
type ApprovalsConfig struct {
	Host   string
	APIKey string
}

// SessionConfig holds settings for the access gate in front of the form.
type SessionConfig struct {
	// Password is the shared secret users type into the access form.
	Password     string
	CookieTTL    time.Duration
	CookieSecure bool
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level string
	// JSON switches to one JSON object per line. It is on by default inside Kubernetes.
	JSON bool
}

// DatabaseConfig holds PostgreSQL database connection settings for the run ledger.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether a database host was configured.
func (c DatabaseConfig) Enabled() bool { return c.Host != "" }

// MinIOConfig holds object storage settings for the document archive.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an object storage endpoint was configured.
func (c MinIOConfig) Enabled() bool { return c.Endpoint != "" }

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Approvals ApprovalsConfig
	Session   SessionConfig
	Log       LogConfig
	Database  DatabaseConfig
	MinIO     MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	// An absent key is not an error: the remote service rejects the empty credential.
	apiKey := os.Getenv("INTERNAL_API_KEY")

	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Approvals: ApprovalsConfig{
			Host:   approvalsHost(),
			APIKey: apiKey,
		},
		Session: SessionConfig{
			Password:     getEnv("ACCESS_PASSWORD", apiKey),
			CookieTTL:    getEnvDuration("SESSION_COOKIE_TTL", 24*time.Hour),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "debug"),
			JSON:  getEnvBool("LOG_JSON", os.Getenv("KUBERNETES_SERVICE_HOST") != ""),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

// approvalsHost prefers APPROVALS_HOST. HOSTNAME is honoured only when it looks
// like a URL, since container runtimes set it to the pod name.
func approvalsHost() string {
	if v := os.Getenv("APPROVALS_HOST"); v != "" {
		return strings.TrimRight(v, "/")
	}
	if v := os.Getenv("HOSTNAME"); strings.Contains(v, "://") {
		return strings.TrimRight(v, "/")
	}
	return DefaultApprovalsHost
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
