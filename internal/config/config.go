package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSecretKey is returned when SECRET_KEY is not set. The service
// refuses to start without it.
var ErrMissingSecretKey = errors.New("SECRET_KEY is not set")

const (
	SessionStoreMemory    = "memory"
	SessionStoreDatastore = "datastore"
)

// Config is built once at startup and handed to the constructors that need it.
type Config struct {
	// server config
	AppPort string

	// database config
	DBHost            string
	DBPort            int
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBConnMaxLifetime time.Duration
	DBMaxIdleConns    int
	DBMaxOpenConns    int
	DBAutoMigrate     bool

	// security config
	SecretKey           string
	SessionTTL          time.Duration
	SessionCookieSecure bool
	SessionStore        string
	DatastoreProjectID  string

	// search config
	ElasticURL   string
	ElasticIndex string

	// logger config
	LogFilePath string
	LogLevel    string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppPort:             getEnvString("APP_PORT", "3000"),
		DBHost:              getEnvString("DB_HOST", "localhost"),
		DBPort:              getEnvInt("DB_PORT", 5432),
		DBUser:              getEnvString("DB_USER", "postgres"),
		DBPassword:          getEnvString("DB_PASSWORD", "postgres"),
		DBName:              getEnvString("DB_NAME", "employees"),
		DBSSLMode:           getEnvString("DB_SSL_MODE", "disable"),
		DBConnMaxLifetime:   getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DBMaxIdleConns:      getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:      getEnvInt("DB_MAX_OPEN_CONNS", 100),
		DBAutoMigrate:       getEnvBool("DB_AUTO_MIGRATE", true),
		SecretKey:           os.Getenv("SECRET_KEY"),
		SessionTTL:          getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionCookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		SessionStore:        strings.ToLower(getEnvString("SESSION_STORE", SessionStoreMemory)),
		DatastoreProjectID:  getEnvString("DATASTORE_PROJECT_ID", ""),
		ElasticURL:          getEnvString("ELASTIC_URL", ""),
		ElasticIndex:        getEnvString("ELASTIC_INDEX", "employees"),
		LogFilePath:         getEnvString("LOG_FILE_PATH", ""),
		LogLevel:            getEnvString("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	switch c.SessionStore {
	case SessionStoreMemory:
	case SessionStoreDatastore:
		if c.DatastoreProjectID == "" {
			return fmt.Errorf("SESSION_STORE=%s requires DATASTORE_PROJECT_ID", c.SessionStore)
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// SearchEnabled reports whether an Elasticsearch URL was configured.
func (c *Config) SearchEnabled() bool {
	return c.ElasticURL != ""
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
