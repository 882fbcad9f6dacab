package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Backend
	APIURL      string // base URL of the scraping API; "/search" is appended
	HTTPTimeout time.Duration
	ProxyURL    string // optional HTTP or SOCKS5 proxy for API calls

	// Search defaults
	DefaultMode       string // "basic", "detailed"
	DefaultMaxResults int

	// Web UI
	WebPort     string
	SearchRate  float64 // searches per second accepted by the web UI
	SearchBurst int
	ExportDir   string

	// MCP HTTP server
	HTTPPort string
	APIKey   string

	// Logging
	LogLevel string
	LogFile  string // empty means stderr only
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIURL:            "http://localhost:5000/api",
		HTTPTimeout:       60 * time.Second,
		DefaultMode:       "basic",
		DefaultMaxResults: 10,
		WebPort:           "3000",
		SearchRate:        1.0,
		SearchBurst:       3,
		ExportDir:         ".",
		HTTPPort:          "8080",
		LogLevel:          "info",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("PHONESCOPE_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("PHONESCOPE_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTPTimeout = d
		}
	}
	if v := os.Getenv("PHONESCOPE_PROXY_URL"); v != "" {
		c.ProxyURL = v
	}
	if v := os.Getenv("PHONESCOPE_MODE"); v != "" {
		c.DefaultMode = v
	}
	if v := os.Getenv("PHONESCOPE_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DefaultMaxResults = n
		}
	}
	if v := os.Getenv("PHONESCOPE_WEB_PORT"); v != "" {
		c.WebPort = v
	}
	if v := os.Getenv("PHONESCOPE_SEARCH_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.SearchRate = f
		}
	}
	if v := os.Getenv("PHONESCOPE_SEARCH_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SearchBurst = n
		}
	}
	if v := os.Getenv("PHONESCOPE_EXPORT_DIR"); v != "" {
		c.ExportDir = v
	}
	if v := os.Getenv("PHONESCOPE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PHONESCOPE_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("PHONESCOPE_API_KEY"); v != "" {
		c.APIKey = v
	}
}
