package cache

import (
	"time"

	"github.com/goliatone/go-cached-table/internal/cacheinfra"
)

// Config exposes the TTL cache settings to consumers of the cache package.
type Config struct {
	Capacity             int                 `yaml:"capacity" env:"CAPACITY"`
	NumShards            int                 `yaml:"num_shards" env:"NUM_SHARDS"`
	TTL                  time.Duration       `yaml:"ttl" env:"TTL"`
	EvictionPercentage   int                 `yaml:"eviction_percentage" env:"EVICTION_PERCENTAGE"`
	EarlyRefresh         *EarlyRefreshConfig `yaml:"early_refresh" envPrefix:"EARLY_REFRESH_"`
	MissingRecordStorage bool                `yaml:"missing_record_storage" env:"MISSING_RECORD_STORAGE"`
	EvictionInterval     time.Duration       `yaml:"eviction_interval" env:"EVICTION_INTERVAL"`
}

// EarlyRefreshConfig mirrors the underlying sturdyc early refresh options.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration `yaml:"min_async_refresh_time" env:"MIN_ASYNC"`
	MaxAsyncRefreshTime time.Duration `yaml:"max_async_refresh_time" env:"MAX_ASYNC"`
	SyncRefreshTime     time.Duration `yaml:"sync_refresh_time" env:"SYNC"`
	RetryBaseDelay      time.Duration `yaml:"retry_base_delay" env:"RETRY_BASE_DELAY"`
}

// DefaultConfig returns the defaults for lazily populated row caches.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

func (c Config) toInternal() cacheinfra.Config {
	var early *cacheinfra.EarlyRefreshConfig
	if c.EarlyRefresh != nil {
		early = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: c.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     c.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      c.EarlyRefresh.RetryBaseDelay,
		}
	}

	return cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: c.MissingRecordStorage,
		EvictionInterval:     c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	var early *EarlyRefreshConfig
	if cfg.EarlyRefresh != nil {
		early = &EarlyRefreshConfig{
			MinAsyncRefreshTime: cfg.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: cfg.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     cfg.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      cfg.EarlyRefresh.RetryBaseDelay,
		}
	}

	return Config{
		Capacity:             cfg.Capacity,
		NumShards:            cfg.NumShards,
		TTL:                  cfg.TTL,
		EvictionPercentage:   cfg.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: cfg.MissingRecordStorage,
		EvictionInterval:     cfg.EvictionInterval,
	}
}
