package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/flagx"
)

// Config holds runtime settings for the shoplist client.
//
// Fields:
//   - APIBaseURL: base URL of the REST backend, including the /api prefix.
//   - DatabasePath: sqlite file that keeps the session between runs.
//   - RequestTimeout: per-request timeout; zero leaves it to the transport.
//   - SearchDebounce: quiet period before a group search is sent.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL     string
	DatabasePath   string
	RequestTimeout time.Duration
	SearchDebounce time.Duration
	LogLevel       string
}

const DefaultAPIBaseURL = "https://nt-shopping-list.onrender.com/api"

// LoadDefaults populates c with sensible defaults. LOG_LEVEL, when set,
// replaces the default level.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = DefaultAPIBaseURL
	c.DatabasePath = "shoplist.db"
	c.RequestTimeout = 0
	c.SearchDebounce = 500 * time.Millisecond
	c.LogLevel = "info"
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if any) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, flagx.ConfigFile())
	parseFlags(cfg, os.Args[1:])
	return cfg
}
