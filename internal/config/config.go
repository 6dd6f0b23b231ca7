package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

// DefaultMaxUploadBytes bounds upload payloads when STORAGE_MAX_UPLOAD_BYTES
// is not set. Policy value; the store itself accepts far larger objects.
const DefaultMaxUploadBytes = 32 << 20

// StorageConfig holds object storage settings for the document container.
type StorageConfig struct {
	Endpoint       string
	AccountName    string
	AccountKey     string
	Container      string
	UseSSL         bool
	MaxUploadBytes int64
}

// BodyLimit returns the transport-level request body cap: the upload bound
// plus slack for multipart framing, clamped to the platform int range.
func (s StorageConfig) BodyLimit() int {
	if s.MaxUploadBytes > math.MaxInt-1<<20 {
		return math.MaxInt
	}
	return int(s.MaxUploadBytes) + 1<<20
}

// DatabaseConfig holds PostgreSQL connection settings for the audit trail.
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

// AdminConfig holds the placeholder admin credential pair.
type AdminConfig struct {
	Username string
	Password string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables once at startup and never
// mutated afterwards.
type AppConfig struct {
	AppHost  string
	Port     string
	Storage  StorageConfig
	Database DatabaseConfig
	Admin    AdminConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the .env file.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Storage: StorageConfig{
			Endpoint:       getEnv("STORAGE_ENDPOINT", ""),
			AccountName:    getEnv("STORAGE_ACCOUNT_NAME", ""),
			AccountKey:     getEnv("STORAGE_ACCOUNT_KEY", ""),
			Container:      getEnv("STORAGE_CONTAINER_NAME", ""),
			UseSSL:         getEnvBool("STORAGE_USE_SSL", false),
			MaxUploadBytes: getEnvInt64("STORAGE_MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
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
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}
}

// Validate reports missing required settings. Absence of any storage or
// admin credential is a startup-fatal configuration error, never a
// per-request one.
func (c *AppConfig) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"STORAGE_ENDPOINT", c.Storage.Endpoint},
		{"STORAGE_ACCOUNT_NAME", c.Storage.AccountName},
		{"STORAGE_ACCOUNT_KEY", c.Storage.AccountKey},
		{"STORAGE_CONTAINER_NAME", c.Storage.Container},
		{"ADMIN_USERNAME", c.Admin.Username},
		{"ADMIN_PASSWORD", c.Admin.Password},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required configuration: %s", r.key)
		}
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
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

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
