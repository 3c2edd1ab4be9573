// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// The Telegram bot token is the only hard requirement; use Validate before serving.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultMaxLinksPerUser is the per-round submission cap applied when
// MAX_LINKS_PER_USER is unset.
const DefaultMaxLinksPerUser = 2

type Config struct {
	// Telegram
	BotToken string

	// HTTP
	HTTPAddr string

	// Link recognition
	LinkHosts       []string
	MaxLinksPerUser int

	// Session policy knobs (behavior varied across bot revisions; all kept configurable)
	OpenOnCreate   bool // a never-opened chat session accepts submissions
	StopClears     bool // /stop discards round data instead of only closing
	SilentTracking bool // accepted links are logged, not acknowledged in chat

	// Archive (optional; empty DSN disables the audit trail entirely)
	DBDsn string
}

// Load reads environment variables and applies defaults. It doesn't fail on a
// missing bot token; call Validate when you are about to talk to Telegram.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.BotToken = os.Getenv("BOT_TOKEN")

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	hosts := os.Getenv("LINK_HOSTS")
	if hosts == "" {
		hosts = "x.com,twitter.com"
	}
	for _, h := range strings.Split(hosts, ",") {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			cfg.LinkHosts = append(cfg.LinkHosts, h)
		}
	}
	if len(cfg.LinkHosts) == 0 {
		return nil, fmt.Errorf("LINK_HOSTS resolved to an empty host list")
	}

	cfg.MaxLinksPerUser = DefaultMaxLinksPerUser
	if v := os.Getenv("MAX_LINKS_PER_USER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MAX_LINKS_PER_USER %q: want positive integer", v)
		}
		cfg.MaxLinksPerUser = n
	}

	cfg.OpenOnCreate = boolEnv("SESSION_OPEN_ON_CREATE")
	cfg.StopClears = boolEnv("SESSION_STOP_CLEARS")
	cfg.SilentTracking = boolEnv("SILENT_TRACKING")

	cfg.DBDsn = os.Getenv("DB_DSN")

	return cfg, nil
}

// Validate checks required fields before the bot connects to Telegram.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("missing required env: BOT_TOKEN")
	}
	return nil
}

// ArchiveEnabled reports whether the Postgres audit trail is configured.
func (c *Config) ArchiveEnabled() bool { return c.DBDsn != "" }

func boolEnv(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
