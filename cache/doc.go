// Package cache defines the in-memory row caches used by cached tables and the
// key serializer that addresses them.
//
// # Services
//
// CacheService is a generic, goroutine safe cache. Two implementations are
// provided:
//
//   - NewTTLService: bounded and sharded, entries expire after Config.TTL.
//     Lazily populated tables use it so rows age out on their own.
//   - NewMapService: unbounded, no expiry. Tables that mirror their full
//     contents in memory use it, since an evicted row would read as deleted.
//
// Both support read-through loading:
//
//	row, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (record.Row, error) {
//		rows, err := adapter.SelectRows(ctx, "config", filter)
//		if err != nil {
//			return nil, err
//		}
//		if len(rows) == 0 {
//			return nil, cache.ErrNotFound
//		}
//		return rows[0], nil
//	})
//
// # Keys
//
// The default KeySerializer joins a namespace (the table name) with the primary
// key values:
//
//	serializer := cache.NewDefaultKeySerializer()
//	key := serializer.SerializeKey("site_config", "theme") // site_config::s:theme
//
// Each value carries a short type tag, so "1" and 1 never collide, while
// integers of different widths share a key. Separators inside strings are
// escaped. Composite values fall back to JSON.
package cache
