// Package config loads the application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store kinds.
const (
	StoreDemo   = "demo"
	StoreSheet  = "sheet"
	StoreSQLite = "sqlite"
)

// Config holds application configuration
type Config struct {
	Store        string // demo, sheet or sqlite
	SheetURL     string
	DatabasePath string
	Currency     string
	LogLevel     string
	LogPretty    bool
	Port         int
	RedisAddr    string   // news are cached in memory when empty
	KafkaBrokers []string // ledger events are not published when empty
	KafkaTopic   string
	Refresh      string // cron schedule
	Model        string
	HTTPTimeout  time.Duration
}

// Load reads configuration from environment variables, after loading the
// given env files (".env" by default) when they exist. Variables already set
// in the environment win over the files.
//
// Load only fails on malformed values. The result is checked by Validate, once
// command line overrides are applied.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load %s: %w", f, err)
		}
	}

	timeout, err := getEnvAsDuration("FOLIO_HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	port, err := getEnvAsInt("FOLIO_PORT", 8080)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Store:        strings.ToLower(getEnv("FOLIO_STORE", StoreDemo)),
		SheetURL:     getEnv("FOLIO_SHEET_URL", ""),
		DatabasePath: getEnv("FOLIO_DB", "folio.db"),
		Currency:     getEnv("FOLIO_CURRENCY", "TWD"),
		LogLevel:     getEnv("FOLIO_LOG_LEVEL", "info"),
		LogPretty:    getEnvAsBool("FOLIO_LOG_PRETTY", true),
		Port:         port,
		RedisAddr:    getEnv("FOLIO_REDIS_ADDR", ""),
		KafkaBrokers: getEnvAsList("FOLIO_KAFKA_BROKERS"),
		KafkaTopic:   getEnv("FOLIO_KAFKA_TOPIC", "folio.ledger"),
		Refresh:      getEnv("FOLIO_REFRESH", "@every 5m"),
		Model:        getEnv("FOLIO_MODEL", "gemini-2.5-pro"),
		HTTPTimeout:  timeout,
	}

	return cfg, nil
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreDemo:
	case StoreSheet:
		if c.SheetURL == "" {
			return errors.New("FOLIO_SHEET_URL is required by the sheet store")
		}
	case StoreSQLite:
		if c.DatabasePath == "" {
			return errors.New("FOLIO_DB is required by the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store %q, expected %s, %s or %s", c.Store, StoreDemo, StoreSheet, StoreSQLite)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := getEnv(key, ""); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvAsList(key string) []string {
	var list []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return list
}
