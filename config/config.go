// Package config loads application settings: built-in defaults, then an
// optional YAML file, then CACHED_TABLE_ environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-cached-table/cache"
	"github.com/goliatone/go-cached-table/store/bunstore"
	"github.com/goliatone/go-cached-table/table"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CACHED_TABLE_"

// DriverMemory selects the in-process store.
const DriverMemory = "memory"

// Config is the root configuration.
type Config struct {
	CachingStrategy string        `yaml:"caching_strategy" env:"CACHING_STRATEGY"`
	Cache           cache.Config  `yaml:"cache" envPrefix:"CACHE_"`
	Store           StoreConfig   `yaml:"store" envPrefix:"STORE_"`
	Log             LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Metrics         MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
}

// StoreConfig selects the durable record store.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	DSN    string `yaml:"dsn" env:"DSN"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// Default returns a configuration that runs without any external service.
func Default() Config {
	return Config{
		CachingStrategy: string(table.StrategyLazy),
		Cache:           cache.DefaultConfig(),
		Store: StoreConfig{
			Driver: DriverMemory,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: "cached_table",
		},
	}
}

// Load builds a configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromFile overlays the YAML file at path onto c.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse config file "+path)
	}
	return nil
}

// LoadFromEnv overlays CACHED_TABLE_ environment variables onto c.
func (c *Config) LoadFromEnv() error {
	early := c.Cache.EarlyRefresh
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse environment")
	}
	if early == nil && c.Cache.EarlyRefresh != nil && *c.Cache.EarlyRefresh == (cache.EarlyRefreshConfig{}) {
		c.Cache.EarlyRefresh = nil
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.CachingStrategy, validation.Required, validation.By(func(value any) error {
			_, err := table.ParseCachingStrategy(value.(string))
			return err
		})),
		validation.Field(&c.Store),
		validation.Field(&c.Log),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid configuration")
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	return nil
}

func (s StoreConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required,
			validation.In(DriverMemory, bunstore.DriverSQLite3, bunstore.DriverSQLite, bunstore.DriverPostgres)),
		validation.Field(&s.DSN, validation.When(s.Driver != DriverMemory, validation.Required)),
	)
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.When(l.Level != "", validation.By(func(any) error {
			var level slog.Level
			return level.UnmarshalText([]byte(l.Level))
		}))),
		validation.Field(&l.Format, validation.In("text", "json")),
	)
}

// SlogLevel parses Level the way slog does ("warn", "DEBUG", "info+2").
// An empty or invalid level is reported as slog.LevelInfo.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Strategy returns the parsed caching strategy. Call it on a validated config.
func (c Config) Strategy() table.CachingStrategy {
	s, _ := table.ParseCachingStrategy(c.CachingStrategy)
	return s
}

func (c Config) String() string {
	return fmt.Sprintf("strategy=%s store=%s log=%s/%s metrics=%t",
		c.CachingStrategy, c.Store.Driver, c.Log.Level, c.Log.Format, c.Metrics.Enabled)
}
