// Package config loads Gridline configuration from gridline.yaml,
// environment variables, and CLI flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Defaults.
const (
	DefaultDatabasePath = "gridline.db"
	DefaultPort         = 8090
	DefaultLogLevel     = "info"
)

// Config file names, checked in order.
var configFileNames = []string{"gridline.yaml", "gridline.yml"}

// Config holds the resolved configuration.
type Config struct {
	DatabasePath string `koanf:"database_path"`
	Port         int    `koanf:"port"`
	LogLevel     string `koanf:"log_level"`
	Verbose      bool   `koanf:"verbose"`
}

// Load resolves configuration with precedence (highest to lowest):
// flags > environment variables (GRIDLINE_ prefix) > config file >
// defaults. cfgFile overrides config file discovery when non-empty.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"database_path": DefaultDatabasePath,
		"port":          DefaultPort,
		"log_level":     DefaultLogLevel,
		"verbose":       false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// GRIDLINE_DATABASE_PATH -> database_path
	if err := k.Load(env.Provider("GRIDLINE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "GRIDLINE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// findConfigFile finds the config file to use.
// Priority: explicit path > gridline.yaml > gridline.yml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}
