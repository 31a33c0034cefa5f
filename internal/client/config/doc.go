// Package config loads runtime configuration for the shoplist client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults), with LOG_LEVEL from the
//     environment.
//  2. Optional config file selected with -c or --config. Files ending in
//     .yaml or .yml are YAML, everything else is JSON.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a, --api string        backend base URL
//	-d, --db string         sqlite file for the local session store
//	-t, --timeout int       request timeout (seconds)
//	    --debounce int      search debounce (milliseconds)
//	-l, --log-level string  debug|info|warn|error
//
// # File schema
//
// Durations are timex.Duration values, so they can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "https://nt-shopping-list.onrender.com/api",
//	  "database_path": "shoplist.db",
//	  "request_timeout": "10s",
//	  "search_debounce": "500ms",
//	  "log_level": "info"
//	}
package config
