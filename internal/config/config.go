// Package config loads runtime configuration from, in increasing order
// of precedence: built-in defaults, a yaml file, MURAJAA_* environment
// variables, and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "MURAJAA_"

// Config is the full runtime configuration.
type Config struct {
	DB struct {
		Path string `koanf:"path"`
	} `koanf:"db"`
	HTTP struct {
		Addr string `koanf:"addr"`
	} `koanf:"http"`
	Language struct {
		Default string `koanf:"default"`
	} `koanf:"language"`
}

// Load merges the configuration sources. configFile may be empty; flags
// may be nil. Flag names use the dotted config keys (e.g. db.path).
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	// MURAJAA_DB_PATH becomes db.path.
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load environment config: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flag config: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DB.Path == "" {
		cfg.DB.Path = "murajaa.db"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Language.Default == "" {
		cfg.Language.Default = "ar"
	}
	return cfg, nil
}
