// Package table implements cached tables: a schema, a row cache and a record
// store adapter bound together behind the Table interface.
//
// A table is opened with a caching strategy:
//
//	t, err := table.Open(ctx, schema, table.Options{
//		Strategy: table.StrategyLazy,
//		Adapter:  adapter,
//	})
//
// StrategyNone reads and writes through the adapter on every call.
// StrategyEager loads the full table at open and serves reads from memory.
// StrategyLazy serves primary key lookups from a TTL cache filled on demand.
// StrategyTesting never touches an adapter and keeps rows in memory only.
//
// Durable strategies write to the adapter before the cache, and a failed
// adapter call leaves the cache untouched. Rows handed out are copies.
//
// Errors follow the record package taxonomy: record.IsDuplicateKey,
// record.IsRecordNotFound, record.IsAdapterIO and record.IsSchemaMismatch.
//
// InvalidateExpiration is the cache invalidation hook: it zeroes the
// expirationTime field of the selected rows through Update.
package table
