package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/MatthiasKunnen/xdgmime/basedir"
)

const envPrefix = "XDGMIME_"

// configFile is looked up relative to the XDG config directories.
const configFile = "xdgmime/config.yaml"

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. YAML file: path, else $XDGMIME_CONFIG, else xdgmime/config.yaml in the XDG config dirs
//  3. env (prefix XDGMIME_)
//
// XDGMIME_DATA_DIRS is a list separated like $PATH.
func Load(_ context.Context, path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	path, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// XDGMIME_SNIFF_LIMIT -> sniff_limit
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key string, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "config" {
			return "", nil
		}

		if key == "data_dirs" {
			return key, filepath.SplitList(value)
		}

		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		return path, nil
	}

	path, err := basedir.FindConfigFile(configFile)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	return path, nil
}
