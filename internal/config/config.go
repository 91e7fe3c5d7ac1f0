// Package config centralizes runtime settings for the server, scanner,
// and Kindle delivery. Values come from the environment, optionally
// seeded from a .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the application reads at startup.
type Config struct {
	// Server
	ListenAddr string
	DBPath     string

	// Scanner / index
	ScanWorkers int
	MaxFiles    int
	ScanTimeout time.Duration
	StaleAfter  time.Duration

	// Search
	DefaultThreshold int
	ResultLimit      int

	// Email / Kindle delivery
	GmailAddress     string
	GmailAppPassword string
	KindleEmail      string
	SMTPServer       string
	SMTPPort         int
	MaxAttachmentMB  int

	// Conversion
	CalibreBinary string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr: envString("BOOKSCOUT_LISTEN_ADDR", ":8080"),
		DBPath:     envString("BOOKSCOUT_DB_PATH", defaultDBPath()),

		ScanWorkers: envInt("BOOKSCOUT_SCAN_WORKERS", 4),
		MaxFiles:    envInt("BOOKSCOUT_MAX_FILES", 100000),
		ScanTimeout: envDuration("BOOKSCOUT_SCAN_TIMEOUT", 30*time.Second),
		StaleAfter:  envDuration("BOOKSCOUT_STALE_AFTER", 5*time.Minute),

		// Zero is a valid threshold (match everything); only out-of-range
		// values fall back.
		DefaultThreshold: envIntInRange("BOOKSCOUT_THRESHOLD", 60, 0, 100),
		ResultLimit:      envInt("BOOKSCOUT_RESULT_LIMIT", 100),

		GmailAddress:     envString("GMAIL_ADDRESS", ""),
		GmailAppPassword: envString("GMAIL_APP_PASSWORD", ""),
		KindleEmail:      envString("KINDLE_EMAIL", ""),
		SMTPServer:       envString("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:         envInt("SMTP_PORT", 587),
		MaxAttachmentMB:  envInt("MAX_ATTACHMENT_SIZE_MB", 50),

		CalibreBinary: envString("CALIBRE_CONVERT_BIN", "ebook-convert"),
	}
}

// IsGmailConfigured reports whether outgoing mail can authenticate.
func (c *Config) IsGmailConfigured() bool {
	return c.GmailAddress != "" && c.GmailAppPassword != ""
}

// IsKindleConfigured reports whether a delivery address is set.
func (c *Config) IsKindleConfigured() bool {
	return c.KindleEmail != ""
}

// IsFullyConfigured reports whether send-to-Kindle can work end to end.
func (c *Config) IsFullyConfigured() bool {
	return c.IsGmailConfigured() && c.IsKindleConfigured()
}

// Summary returns the current configuration without sensitive values,
// suitable for a status endpoint.
func (c *Config) Summary() map[string]any {
	return map[string]any{
		"gmail_address":          c.GmailAddress,
		"kindle_email":           c.KindleEmail,
		"smtp_server":            c.SMTPServer,
		"smtp_port":              c.SMTPPort,
		"max_attachment_size_mb": c.MaxAttachmentMB,
		"gmail_configured":       c.IsGmailConfigured(),
		"kindle_configured":      c.IsKindleConfigured(),
		"fully_configured":       c.IsFullyConfigured(),
		"scan_workers":           c.ScanWorkers,
		"max_files":              c.MaxFiles,
		"stale_after":            c.StaleAfter.String(),
		"default_threshold":      c.DefaultThreshold,
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bookscout.db"
	}
	return home + "/.bookscout/bookscout.db"
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envIntInRange(key string, fallback, min, max int) int {
	n := envInt(key, fallback)
	if n < min || n > max {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
