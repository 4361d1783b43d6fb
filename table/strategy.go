package table

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-cached-table/record"
)

// CachingStrategy selects when a table consults its in-memory cache and when
// it goes to the durable store.
type CachingStrategy string

const (
	// StrategyNone always reads and writes through the store. The cache is
	// kept consistent but never served from.
	StrategyNone CachingStrategy = "none"
	// StrategyEager loads the whole table when opened and serves every read
	// from memory.
	StrategyEager CachingStrategy = "eager"
	// StrategyLazy caches rows as they are read by primary key.
	StrategyLazy CachingStrategy = "lazy"
	// StrategyTesting keeps rows in memory only. No store is touched.
	StrategyTesting CachingStrategy = "testing"
)

// ParseCachingStrategy parses a strategy name, case insensitively.
func ParseCachingStrategy(s string) (CachingStrategy, error) {
	switch c := CachingStrategy(strings.ToLower(strings.TrimSpace(s))); c {
	case StrategyNone, StrategyEager, StrategyLazy, StrategyTesting:
		return c, nil
	}
	return "", fmt.Errorf("unknown caching strategy %q", s)
}

func (c CachingStrategy) String() string {
	return string(c)
}

// Durable reports whether the strategy persists rows through an adapter.
func (c CachingStrategy) Durable() bool {
	return c != StrategyTesting
}

// strategy is the per-policy half of a table. Inputs have already passed the
// schema checks and returned rows are owned by the cache, so the proxy clones
// them before handing them out.
type strategy interface {
	open(ctx context.Context) error

	insert(ctx context.Context, row record.Row) error
	update(ctx context.Context, patch record.Row, filter record.Filter) error
	delete(ctx context.Context, filter record.Filter) error
	deleteByKey(ctx context.Context, key record.Key) error

	getByKey(ctx context.Context, key record.Key) (record.Row, error)
	getMany(ctx context.Context, filter record.Filter) ([]record.Row, error)
	// count reports how many rows filter selects. A positive limit lets the
	// strategy stop once that many are found.
	count(ctx context.Context, filter record.Filter, limit int) (int, error)

	invalidate(ctx context.Context) error
}

func capCount(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

func newStrategy(kind CachingStrategy, rows *rowCache, adapter *adapterIO) (strategy, error) {
	switch kind {
	case StrategyNone:
		return &noneStrategy{rows: rows, adapter: adapter}, nil
	case StrategyEager:
		return &eagerStrategy{rows: rows, adapter: adapter}, nil
	case StrategyLazy:
		return &lazyStrategy{rows: rows, adapter: adapter}, nil
	case StrategyTesting:
		return &testingStrategy{rows: rows}, nil
	}
	return nil, fmt.Errorf("unknown caching strategy %q", kind)
}
