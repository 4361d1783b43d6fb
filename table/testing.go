package table

import (
	"context"

	"github.com/goliatone/go-cached-table/record"
)

// testingStrategy treats the cache as the only store. It never calls an
// adapter, so tables using it are ephemeral.
type testingStrategy struct {
	rows *rowCache
}

func (s *testingStrategy) open(context.Context) error { return nil }

func (s *testingStrategy) insert(ctx context.Context, row record.Row) error {
	key := s.rows.schema.KeyOf(row)
	if s.rows.has(ctx, key) {
		return record.NewDuplicateKey(s.rows.schema.Table, key)
	}
	return s.rows.put(ctx, row)
}

func (s *testingStrategy) update(ctx context.Context, patch record.Row, filter record.Filter) error {
	_, err := s.rows.patch(ctx, patch, filter)
	return err
}

func (s *testingStrategy) delete(ctx context.Context, filter record.Filter) error {
	_, err := s.rows.removeMatching(ctx, filter)
	return err
}

func (s *testingStrategy) deleteByKey(ctx context.Context, key record.Key) error {
	if !s.rows.has(ctx, key) {
		return record.NewRecordNotFound(s.rows.schema.Table, key.Filter())
	}
	return s.rows.remove(ctx, key)
}

func (s *testingStrategy) getByKey(ctx context.Context, key record.Key) (record.Row, error) {
	row, ok := s.rows.get(ctx, key)
	if !ok {
		return nil, record.NewRecordNotFound(s.rows.schema.Table, key.Filter())
	}
	return row, nil
}

func (s *testingStrategy) getMany(_ context.Context, filter record.Filter) ([]record.Row, error) {
	return s.rows.matching(filter), nil
}

func (s *testingStrategy) count(_ context.Context, filter record.Filter, limit int) (int, error) {
	return s.rows.count(filter, limit), nil
}

// invalidate drops every row: there is nothing to reload them from.
func (s *testingStrategy) invalidate(ctx context.Context) error {
	return s.rows.clear(ctx)
}
