package table

import (
	"context"

	"github.com/goliatone/go-cached-table/record"
)

// noneStrategy goes to the store for every read. The cache still follows
// reads and writes so that switching strategies never finds it stale.
type noneStrategy struct {
	rows    *rowCache
	adapter *adapterIO
}

func (s *noneStrategy) open(ctx context.Context) error {
	return s.adapter.createTable(ctx)
}

func (s *noneStrategy) insert(ctx context.Context, row record.Row) error {
	if err := s.adapter.insert(ctx, row); err != nil {
		return err
	}
	return s.rows.put(ctx, row)
}

func (s *noneStrategy) update(ctx context.Context, patch record.Row, filter record.Filter) error {
	if _, err := s.adapter.update(ctx, patch, filter); err != nil {
		return err
	}
	_, err := s.rows.patch(ctx, patch, filter)
	return err
}

func (s *noneStrategy) delete(ctx context.Context, filter record.Filter) error {
	if _, err := s.adapter.delete(ctx, filter); err != nil {
		return err
	}
	_, err := s.rows.removeMatching(ctx, filter)
	return err
}

func (s *noneStrategy) deleteByKey(ctx context.Context, key record.Key) error {
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

func (s *noneStrategy) getByKey(ctx context.Context, key record.Key) (record.Row, error) {
	rows, err := s.adapter.selectRows(ctx, key.Filter())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if err := s.rows.remove(ctx, key); err != nil {
			return nil, err
		}
		return nil, record.NewRecordNotFound(s.rows.schema.Table, key.Filter())
	}
	if err := s.rows.put(ctx, rows[0]); err != nil {
		return nil, err
	}
	return rows[0], nil
}

func (s *noneStrategy) getMany(ctx context.Context, filter record.Filter) ([]record.Row, error) {
	rows, err := s.adapter.selectRows(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.rows.putAll(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *noneStrategy) count(ctx context.Context, filter record.Filter, limit int) (int, error) {
	rows, err := s.adapter.selectRows(ctx, filter)
	if err != nil {
		return 0, err
	}
	return capCount(len(rows), limit), nil
}

func (s *noneStrategy) invalidate(ctx context.Context) error {
	return s.rows.clear(ctx)
}
