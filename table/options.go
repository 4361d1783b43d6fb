package table

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-cached-table/cache"
	"github.com/goliatone/go-cached-table/record"
	"github.com/goliatone/go-cached-table/store"
)

// Operation names a public table operation.
type Operation string

const (
	OpInsert             Operation = "insert"
	OpUpdate             Operation = "update"
	OpDelete             Operation = "delete"
	OpDeleteByPrimaryKey Operation = "delete_by_primary_key"
	OpGetOneByPrimaryKey Operation = "get_one_by_primary_key"
	OpGetOne             Operation = "get_one"
	OpGetMany            Operation = "get_many"
	OpCount              Operation = "count"
	OpHasAny             Operation = "has_any"
	OpHasAnyByPrimaryKey Operation = "has_any_by_primary_key"
	OpClearCache         Operation = "clear_cache"
	OpClose              Operation = "close"
)

// Observer receives table activity. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	ObserveOperation(table string, strategy CachingStrategy, op Operation, err error)
	ObserveCacheLookup(table string, hit bool)
	ObserveAdapterCall(table string, call string, elapsed time.Duration, err error)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) ObserveOperation(string, CachingStrategy, Operation, error) {}
func (NopObserver) ObserveCacheLookup(string, bool)                           {}
func (NopObserver) ObserveAdapterCall(string, string, time.Duration, error)   {}

// RowCacheFactory builds the cache a table keeps its rows in.
type RowCacheFactory func(strategy CachingStrategy, schema record.Schema) (cache.CacheService[record.Row], error)

// Options configures Open.
type Options struct {
	// Strategy defaults to StrategyLazy.
	Strategy CachingStrategy

	// Adapter is the durable store. Required unless Strategy is
	// StrategyTesting, which ignores it.
	Adapter store.Adapter

	// CacheConfig sizes the TTL cache used by StrategyLazy.
	CacheConfig cache.Config

	// RowCache overrides how row caches are built. When nil, StrategyLazy
	// gets a TTL cache from CacheConfig and every other strategy an
	// unbounded map.
	RowCache RowCacheFactory

	KeySerializer cache.KeySerializer
	Logger        *slog.Logger
	Observer      Observer
}

func (o Options) withDefaults() Options {
	if o.Strategy == "" {
		o.Strategy = StrategyLazy
	}
	if o.CacheConfig == (cache.Config{}) {
		o.CacheConfig = cache.DefaultConfig()
	}
	if o.RowCache == nil {
		o.RowCache = DefaultRowCache(o.CacheConfig)
	}
	if o.KeySerializer == nil {
		o.KeySerializer = cache.NewDefaultKeySerializer()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	return o
}

// DefaultRowCache returns the factory used when Options.RowCache is nil.
func DefaultRowCache(cfg cache.Config) RowCacheFactory {
	return func(strategy CachingStrategy, _ record.Schema) (cache.CacheService[record.Row], error) {
		if strategy == StrategyLazy {
			return cache.NewTTLService[record.Row](cfg)
		}
		return cache.NewMapService[record.Row](), nil
	}
}

// RowCachePool hands every table the same two services: one TTL cache for
// StrategyLazy and one unbounded map for the rest. Rows are keyed by table,
// so clearing one table leaves the others cached.
type RowCachePool struct {
	ttl       cache.CacheService[record.Row]
	unbounded cache.CacheService[record.Row]
}

func NewRowCachePool(cfg cache.Config) (*RowCachePool, error) {
	ttl, err := cache.NewTTLService[record.Row](cfg)
	if err != nil {
		return nil, err
	}
	return &RowCachePool{ttl: ttl, unbounded: cache.NewMapService[record.Row]()}, nil
}

// Factory returns the RowCacheFactory to put in Options.
func (p *RowCachePool) Factory() RowCacheFactory {
	return func(strategy CachingStrategy, _ record.Schema) (cache.CacheService[record.Row], error) {
		if strategy == StrategyLazy {
			return p.ttl, nil
		}
		return p.unbounded, nil
	}
}

// Len reports the rows cached for every table.
func (p *RowCachePool) Len() int {
	return p.ttl.Len() + p.unbounded.Len()
}

// Clear drops the rows of every table. Tables still open reload on demand,
// except testing tables, which lose their data.
func (p *RowCachePool) Clear(ctx context.Context) error {
	if err := p.ttl.Clear(ctx); err != nil {
		return err
	}
	return p.unbounded.Clear(ctx)
}
