package testsupport

import (
	"context"

	"github.com/goliatone/go-cached-table/record"
	"github.com/goliatone/go-cached-table/store"
	"github.com/goliatone/go-cached-table/table"
)

// RecordingAdapter forwards to an adapter and records every call. A nil base
// makes every call succeed with no rows.
type RecordingAdapter struct {
	Recorder
	base store.Adapter
}

var _ store.Adapter = (*RecordingAdapter)(nil)

// NewRecordingAdapter wraps base.
func NewRecordingAdapter(base store.Adapter) *RecordingAdapter {
	return &RecordingAdapter{base: base}
}

func (a *RecordingAdapter) CreateTable(ctx context.Context, schema record.Schema) error {
	a.record("CreateTable", schema.Table)
	if a.base == nil {
		return nil
	}
	return a.base.CreateTable(ctx, schema)
}

func (a *RecordingAdapter) InsertRow(ctx context.Context, tableName string, row record.Row) error {
	a.record("InsertRow", tableName, row.Clone())
	if a.base == nil {
		return nil
	}
	return a.base.InsertRow(ctx, tableName, row)
}

func (a *RecordingAdapter) UpdateRows(ctx context.Context, tableName string, patch record.Row, filter record.Filter) (int64, error) {
	a.record("UpdateRows", tableName, patch.Clone(), filter)
	if a.base == nil {
		return 0, nil
	}
	return a.base.UpdateRows(ctx, tableName, patch, filter)
}

func (a *RecordingAdapter) DeleteRows(ctx context.Context, tableName string, filter record.Filter) (int64, error) {
	a.record("DeleteRows", tableName, filter)
	if a.base == nil {
		return 0, nil
	}
	return a.base.DeleteRows(ctx, tableName, filter)
}

func (a *RecordingAdapter) SelectRows(ctx context.Context, tableName string, filter record.Filter) ([]record.Row, error) {
	a.record("SelectRows", tableName, filter)
	if a.base == nil {
		return nil, nil
	}
	return a.base.SelectRows(ctx, tableName, filter)
}

func (a *RecordingAdapter) Close() error {
	a.record("Close")
	if a.base == nil {
		return nil
	}
	return a.base.Close()
}

// RecordingTable forwards to a table and records every call with its
// arguments. It is the seam tests use to assert which table operations a
// caller performed.
type RecordingTable struct {
	Recorder
	base table.Table
}

var _ table.Table = (*RecordingTable)(nil)

// NewRecordingTable wraps base.
func NewRecordingTable(base table.Table) *RecordingTable {
	return &RecordingTable{base: base}
}

// Unwrap returns the decorated table.
func (t *RecordingTable) Unwrap() table.Table { return t.base }

func (t *RecordingTable) Schema() record.Schema { return t.base.Schema() }

func (t *RecordingTable) Strategy() table.CachingStrategy { return t.base.Strategy() }

func (t *RecordingTable) Insert(ctx context.Context, row record.Row) error {
	t.record("Insert", row.Clone())
	return t.base.Insert(ctx, row)
}

func (t *RecordingTable) Update(ctx context.Context, patch record.Row, filter record.Filter) error {
	t.record("Update", patch.Clone(), filter)
	return t.base.Update(ctx, patch, filter)
}

func (t *RecordingTable) Delete(ctx context.Context, filter record.Filter) error {
	t.record("Delete", filter)
	return t.base.Delete(ctx, filter)
}

func (t *RecordingTable) DeleteByPrimaryKey(ctx context.Context, key record.Key) error {
	t.record("DeleteByPrimaryKey", key)
	return t.base.DeleteByPrimaryKey(ctx, key)
}

func (t *RecordingTable) GetOneByPrimaryKey(ctx context.Context, key record.Key) (record.Row, error) {
	t.record("GetOneByPrimaryKey", key)
	return t.base.GetOneByPrimaryKey(ctx, key)
}

func (t *RecordingTable) GetOne(ctx context.Context, filter record.Filter) (record.Row, error) {
	t.record("GetOne", filter)
	return t.base.GetOne(ctx, filter)
}

func (t *RecordingTable) GetMany(ctx context.Context, filter record.Filter) ([]record.Row, error) {
	t.record("GetMany", filter)
	return t.base.GetMany(ctx, filter)
}

func (t *RecordingTable) Count(ctx context.Context, filter record.Filter) (int, error) {
	t.record("Count", filter)
	return t.base.Count(ctx, filter)
}

func (t *RecordingTable) HasAny(ctx context.Context, filter record.Filter) (bool, error) {
	t.record("HasAny", filter)
	return t.base.HasAny(ctx, filter)
}

func (t *RecordingTable) HasAnyByPrimaryKey(ctx context.Context, key record.Key) (bool, error) {
	t.record("HasAnyByPrimaryKey", key)
	return t.base.HasAnyByPrimaryKey(ctx, key)
}

func (t *RecordingTable) ClearCache(ctx context.Context) error {
	t.record("ClearCache")
	return t.base.ClearCache(ctx)
}

func (t *RecordingTable) Close(ctx context.Context) error {
	t.record("Close")
	return t.base.Close(ctx)
}
