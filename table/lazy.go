package table

import (
	"context"
	"errors"

	"github.com/goliatone/go-cached-table/cache"
	"github.com/goliatone/go-cached-table/record"
)

// lazyStrategy caches rows on first read by primary key. Writes go to the
// store first and are then applied to whatever is cached.
type lazyStrategy struct {
	rows    *rowCache
	adapter *adapterIO
}

func (s *lazyStrategy) open(ctx context.Context) error {
	return s.adapter.createTable(ctx)
}

func (s *lazyStrategy) insert(ctx context.Context, row record.Row) error {
	key := s.rows.schema.KeyOf(row)
	if s.rows.has(ctx, key) {
		return record.NewDuplicateKey(s.rows.schema.Table, key)
	}
	if err := s.adapter.insert(ctx, row); err != nil {
		return err
	}
	return s.rows.put(ctx, row)
}

func (s *lazyStrategy) update(ctx context.Context, patch record.Row, filter record.Filter) error {
	if _, err := s.adapter.update(ctx, patch, filter); err != nil {
		return err
	}
	_, err := s.rows.patch(ctx, patch, filter)
	return err
}

func (s *lazyStrategy) delete(ctx context.Context, filter record.Filter) error {
	if _, err := s.adapter.delete(ctx, filter); err != nil {
		return err
	}
	_, err := s.rows.removeMatching(ctx, filter)
	return err
}

func (s *lazyStrategy) deleteByKey(ctx context.Context, key record.Key) error {
	n, err := s.adapter.delete(ctx, key.Filter())
	if err != nil {
		return err
	}
	if err := s.rows.remove(ctx, key); err != nil {
		return err
	}
	if n == 0 {
		return record.NewRecordNotFound(s.rows.schema.Table, key.Filter())
	}
	return nil
}

func (s *lazyStrategy) getByKey(ctx context.Context, key record.Key) (record.Row, error) {
	if row, ok := s.rows.get(ctx, key); ok {
		return row, nil
	}

	row, err := cache.GetOrFetch(ctx, s.rows.svc, s.rows.key(key), func(ctx context.Context) (record.Row, error) {
		rows, err := s.adapter.selectRows(ctx, key.Filter())
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, cache.ErrNotFound
		}
		return rows[0], nil
	})
	if errors.Is(err, cache.ErrNotFound) {
		return nil, record.NewRecordNotFound(s.rows.schema.Table, key.Filter())
	}
	return row, err
}

// getMany always asks the store, since the cache holds an arbitrary subset of
// the table. What comes back is cached for later key lookups.
func (s *lazyStrategy) getMany(ctx context.Context, filter record.Filter) ([]record.Row, error) {
	rows, err := s.adapter.selectRows(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.rows.putAll(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// count asks the store without caching the result, so counting a large table
// does not evict rows that are read by key.
func (s *lazyStrategy) count(ctx context.Context, filter record.Filter, limit int) (int, error) {
	rows, err := s.adapter.selectRows(ctx, filter)
	if err != nil {
		return 0, err
	}
	return capCount(len(rows), limit), nil
}

func (s *lazyStrategy) invalidate(ctx context.Context) error {
	return s.rows.clear(ctx)
}
