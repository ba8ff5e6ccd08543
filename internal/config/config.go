// Package config defines the configuration of the xdgmime command and how it is loaded.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MatthiasKunnen/xdgmime/resolver"
)

// Fallback detector names.
const (
	FallbackNone     = "none"
	FallbackMimetype = "mimetype"
	FallbackFiletype = "filetype"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is either text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address of the serve command, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SniffLimit is the maximum amount of bytes read from a file for content sniffing.
	SniffLimit int `koanf:"sniff_limit"`

	// DataDirs overrides the XDG data directories the MIME database is loaded from.
	// Earlier directories have higher precedence.
	DataDirs []string `koanf:"data_dirs"`

	// Builtin forces the use of the embedded MIME database.
	Builtin bool `koanf:"builtin"`

	// Fallback names the detector used when the MIME database does not recognize content.
	Fallback string `koanf:"fallback"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  "text",
		Addr:       ":8080",
		SniffLimit: resolver.DefaultSniffLimit,
		Fallback:   FallbackNone,
	}
}

// Validate checks the configuration. The returned error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SniffLimit < 1:
		return fmt.Errorf("%w: sniff_limit must be positive, got %d", ErrInvalidConfig, c.SniffLimit)
	case !slices.Contains([]string{"text", "json"}, strings.ToLower(c.LogFormat)):
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case !slices.Contains([]string{FallbackNone, FallbackMimetype, FallbackFiletype}, c.Fallback):
		return fmt.Errorf("%w: unknown fallback %q", ErrInvalidConfig, c.Fallback)
	}

	return nil
}
