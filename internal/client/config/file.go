package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/shoplist/internal/timex"
)

// fileConfig is a DTO used exclusively for decoding config files. Durations
// use timex.Duration so files can say "3s" or give integer nanoseconds.
type fileConfig struct {
	APIBaseURL     string         `json:"api_base_url" yaml:"api_base_url"`
	DatabasePath   string         `json:"database_path" yaml:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SearchDebounce timex.Duration `json:"search_debounce" yaml:"search_debounce"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the keys present in the file at path. The
// format follows the extension: .yaml/.yml is YAML, anything else JSON.
// An empty path is a no-op; read or decode errors panic.
func parseFile(cfg *Config, path string) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.SearchDebounce.Duration != 0 {
		cfg.SearchDebounce = fc.SearchDebounce.Duration
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
