package table

import (
	"context"
	"strings"

	"github.com/goliatone/go-cached-table/cache"
	"github.com/goliatone/go-cached-table/record"
)

// rowCache addresses cached rows by primary key. Every key starts with the
// table prefix so one cache service can hold the rows of several tables.
type rowCache struct {
	schema record.Schema
	svc    cache.CacheService[record.Row]
	keys   cache.KeySerializer
	obs    Observer
}

func (c *rowCache) key(key record.Key) string {
	return c.keys.SerializeKey(c.schema.Table, c.schema.KeyValues(key)...)
}

func (c *rowCache) prefix() string {
	return c.keys.SerializeKey(c.schema.Table) + cache.KeySeparator
}

// each visits the rows of this table until fn returns false.
func (c *rowCache) each(fn func(row record.Row) bool) {
	prefix := c.prefix()
	c.svc.Range(func(key string, row record.Row) bool {
		if !strings.HasPrefix(key, prefix) {
			return true
		}
		return fn(row)
	})
}

// len reports how many rows of this table are cached.
func (c *rowCache) len() int {
	prefix := c.prefix()
	n := 0
	for _, key := range c.svc.Keys() {
		if strings.HasPrefix(key, prefix) {
			n++
		}
	}
	return n
}

// get looks a row up and reports the hit or miss.
func (c *rowCache) get(ctx context.Context, key record.Key) (record.Row, bool) {
	row, ok := c.svc.Get(ctx, c.key(key))
	c.obs.ObserveCacheLookup(c.schema.Table, ok)
	return row, ok
}

// has is get without the lookup accounting.
func (c *rowCache) has(ctx context.Context, key record.Key) bool {
	_, ok := c.svc.Get(ctx, c.key(key))
	return ok
}

func (c *rowCache) put(ctx context.Context, row record.Row) error {
	return c.svc.Set(ctx, c.key(c.schema.KeyOf(row)), row.Clone())
}

func (c *rowCache) putAll(ctx context.Context, rows []record.Row) error {
	for _, row := range rows {
		if err := c.put(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (c *rowCache) remove(ctx context.Context, key record.Key) error {
	return c.svc.Delete(ctx, c.key(key))
}

// matching returns the cached rows selected by filter, ordered by primary key.
func (c *rowCache) matching(filter record.Filter) []record.Row {
	var rows []record.Row
	c.each(func(row record.Row) bool {
		if filter.Match(row) {
			rows = append(rows, row)
		}
		return true
	})
	c.schema.SortRows(rows)
	return rows
}

// count reports how many cached rows filter selects, stopping at limit when
// limit is positive.
func (c *rowCache) count(filter record.Filter, limit int) int {
	n := 0
	c.each(func(row record.Row) bool {
		if filter.Match(row) {
			n++
		}
		return limit <= 0 || n < limit
	})
	return n
}

// patch merges patch into every cached row selected by filter and returns how
// many rows changed.
func (c *rowCache) patch(ctx context.Context, patch record.Row, filter record.Filter) (int, error) {
	rows := c.matching(filter)
	for _, row := range rows {
		if err := c.put(ctx, row.Merge(patch)); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// removeMatching drops every cached row selected by filter.
func (c *rowCache) removeMatching(ctx context.Context, filter record.Filter) (int, error) {
	if filter.IsAll() {
		n := c.len()
		return n, c.clear(ctx)
	}
	rows := c.matching(filter)
	for _, row := range rows {
		if err := c.remove(ctx, c.schema.KeyOf(row)); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (c *rowCache) clear(ctx context.Context) error {
	return c.svc.DeleteByPrefix(ctx, c.prefix())
}
