package cache

import (
	"context"

	"github.com/goliatone/go-cached-table/internal/cacheinfra"
)

// ErrNotFound is what a FetchFn returns, and what GetOrFetch reports, when the
// source of truth has no value for a key.
var ErrNotFound = cacheinfra.ErrNotFound

// KeySerializer builds a cache key from a namespace and the values that
// identify an entry. Equal inputs must produce equal keys, and a key with
// parts must start with SerializeKey(namespace) followed by KeySeparator so
// a namespace can be dropped with DeleteByPrefix.
type KeySerializer interface {
	SerializeKey(namespace string, parts ...any) string
}

// FetchFn loads a value from the source of truth on a cache miss.
type FetchFn[V any] func(ctx context.Context) (V, error)

// CacheService is the in-memory store a table keeps its rows in.
type CacheService[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V) error
	GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (V, error)) (V, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	// Range visits entries until fn returns false. Order is unspecified.
	Range(fn func(key string, value V) bool)
	Keys() []string
	Len() int
	Clear(ctx context.Context) error
}

// GetOrFetch is a convenience wrapper accepting a named FetchFn.
func GetOrFetch[V any](ctx context.Context, service CacheService[V], key string, fetchFn FetchFn[V]) (V, error) {
	return service.GetOrFetch(ctx, key, fetchFn)
}

// NewTTLService builds a bounded cache whose entries expire after cfg.TTL.
func NewTTLService[V any](cfg Config) (CacheService[V], error) {
	svc, err := cacheinfra.NewSturdycService[V](cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// NewMapService builds an unbounded cache that never evicts.
func NewMapService[V any]() CacheService[V] {
	return cacheinfra.NewMapService[V]()
}
