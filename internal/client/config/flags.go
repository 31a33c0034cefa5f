package config

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/shoplist/internal/flagx"
)

var knownFlags = []string{
	"-a", "--api",
	"-d", "--db",
	"-t", "--timeout",
	"--debounce",
	"-l", "--log-level",
}

// parseFlags populates Config fields from command-line flags.
//
//	-a, --api string        backend base URL
//	-d, --db string         sqlite file for the local session store
//	-t, --timeout int       request timeout (seconds)
//	    --debounce int      search debounce (milliseconds)
//	-l, --log-level string  debug|info|warn|error
//
// args is filtered with flagx.FilterArgs first, so flags owned by other
// components (such as -c) do not cause errors. Invalid values panic.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := pflag.NewFlagSet("shoplist", pflag.ContinueOnError)

	fs.StringVarP(&cfg.APIBaseURL, "api", "a", cfg.APIBaseURL, "backend base URL")
	fs.StringVarP(&cfg.DatabasePath, "db", "d", cfg.DatabasePath, "sqlite file for the local session store")
	timeout := fs.IntP("timeout", "t", int(cfg.RequestTimeout/time.Second), "request timeout (in seconds)")
	debounce := fs.Int("debounce", int(cfg.SearchDebounce/time.Millisecond), "search debounce (in milliseconds)")
	fs.StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "log level: debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if fs.Changed("timeout") {
		cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	}
	if fs.Changed("debounce") {
		cfg.SearchDebounce = time.Duration(*debounce) * time.Millisecond
	}
}
