package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Config holds all application-level configuration
type Config struct {
	// Source pages
	ListURL string
	BaseURL string // prefixed to the relative company links in the list

	// Scraper
	RateLimitDelay int // milliseconds between detail page requests
	MaxRetries     int
	RequestTimeout int // milliseconds
	FetchMode      string
	UserAgent      string

	// Output
	CSVFilePath string
	DatabaseURL string
	SQLitePath  string

	Debug bool
}

// Load reads configuration from a .env file (if any) and environment
// variables, falling back to defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		ListURL:        getEnv("CLEANTECH_LIST_URL", "https://i3connect.com/gct100/the-list"),
		BaseURL:        getEnv("CLEANTECH_BASE_URL", "https://i3connect.com"),
		RateLimitDelay: getEnvInt("RATE_LIMIT_DELAY_MS", 3000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 1),
		RequestTimeout: getEnvInt("REQUEST_TIMEOUT_MS", 30000),
		FetchMode:      strings.ToLower(getEnv("FETCH_MODE", FetchModeHTTP)),
		UserAgent:      getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		CSVFilePath:    getEnv("CSV_FILE_PATH", "cleantech100_companies.csv"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", ""),
		Debug:          strings.EqualFold(getEnv("LOG_LEVEL", "info"), "debug"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the scraper cannot run with
func (c *Config) Validate() error {
	switch c.FetchMode {
	case FetchModeHTTP, FetchModeBrowser:
	default:
		return fmt.Errorf("unknown FETCH_MODE %q (want %q or %q)", c.FetchMode, FetchModeHTTP, FetchModeBrowser)
	}
	if c.ListURL == "" {
		return fmt.Errorf("CLEANTECH_LIST_URL must not be empty")
	}
	if c.CSVFilePath == "" {
		return fmt.Errorf("CSV_FILE_PATH must not be empty")
	}
	if c.RateLimitDelay < 0 {
		return fmt.Errorf("RATE_LIMIT_DELAY_MS must not be negative")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
