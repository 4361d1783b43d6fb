package table

import (
	"context"
	"sync/atomic"

	"github.com/goliatone/go-cached-table/record"
)

// eagerStrategy mirrors the whole table in memory. Rows are loaded when the
// table opens, and again on first use after the cache was cleared.
type eagerStrategy struct {
	rows    *rowCache
	adapter *adapterIO
	loaded  atomic.Bool
}

func (s *eagerStrategy) open(ctx context.Context) error {
	if err := s.adapter.createTable(ctx); err != nil {
		return err
	}
	return s.load(ctx)
}

func (s *eagerStrategy) load(ctx context.Context) error {
	rows, err := s.adapter.selectRows(ctx, nil)
	if err != nil {
		return err
	}
	if err := s.rows.clear(ctx); err != nil {
		return err
	}
	if err := s.rows.putAll(ctx, rows); err != nil {
		return err
	}
	s.loaded.Store(true)
	return nil
}

func (s *eagerStrategy) ensureLoaded(ctx context.Context) error {
	if s.loaded.Load() {
		return nil
	}
	return s.load(ctx)
}

func (s *eagerStrategy) insert(ctx context.Context, row record.Row) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	key := s.rows.schema.KeyOf(row)
	if s.rows.has(ctx, key) {
		return record.NewDuplicateKey(s.rows.schema.Table, key)
	}
	if err := s.adapter.insert(ctx, row); err != nil {
		return err
	}
	return s.rows.put(ctx, row)
}

func (s *eagerStrategy) update(ctx context.Context, patch record.Row, filter record.Filter) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if _, err := s.adapter.update(ctx, patch, filter); err != nil {
		return err
	}
	_, err := s.rows.patch(ctx, patch, filter)
	return err
}

func (s *eagerStrategy) delete(ctx context.Context, filter record.Filter) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if _, err := s.adapter.delete(ctx, filter); err != nil {
		return err
	}
	_, err := s.rows.removeMatching(ctx, filter)
	return err
}

func (s *eagerStrategy) deleteByKey(ctx context.Context, key record.Key) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if !s.rows.has(ctx, key) {
		return record.NewRecordNotFound(s.rows.schema.Table, key.Filter())
	}
	if _, err := s.adapter.delete(ctx, key.Filter()); err != nil {
		return err
	}
	return s.rows.remove(ctx, key)
}

func (s *eagerStrategy) getByKey(ctx context.Context, key record.Key) (record.Row, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	row, ok := s.rows.get(ctx, key)
	if !ok {
		return nil, record.NewRecordNotFound(s.rows.schema.Table, key.Filter())
	}
	return row, nil
}

func (s *eagerStrategy) getMany(ctx context.Context, filter record.Filter) ([]record.Row, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.rows.matching(filter), nil
}

func (s *eagerStrategy) count(ctx context.Context, filter record.Filter, limit int) (int, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return s.rows.count(filter, limit), nil
}

func (s *eagerStrategy) invalidate(ctx context.Context) error {
	s.loaded.Store(false)
	return s.rows.clear(ctx)
}
