package table

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-cached-table/record"
	"github.com/goliatone/go-cached-table/store"
)

// Adapter call names reported to the Observer.
const (
	CallCreateTable = "create_table"
	CallInsert      = "insert_row"
	CallUpdate      = "update_rows"
	CallDelete      = "delete_rows"
	CallSelect      = "select_rows"
)

// adapterIO binds an adapter to one table. It times every call and turns
// adapter failures into the table error taxonomy.
type adapterIO struct {
	schema  record.Schema
	adapter store.Adapter
	obs     Observer
}

func (a *adapterIO) createTable(ctx context.Context) error {
	return a.call(ctx, CallCreateTable, func() error {
		return a.adapter.CreateTable(ctx, a.schema)
	})
}

func (a *adapterIO) insert(ctx context.Context, row record.Row) error {
	err := a.call(ctx, CallInsert, func() error {
		return a.adapter.InsertRow(ctx, a.schema.Table, row)
	})
	if err != nil && errors.Is(err, store.ErrDuplicateKey) {
		return record.NewDuplicateKey(a.schema.Table, a.schema.KeyOf(row)).WithMetadata(map[string]any{"cause": err.Error()})
	}
	return a.wrap(CallInsert, err)
}

func (a *adapterIO) update(ctx context.Context, patch record.Row, filter record.Filter) (int64, error) {
	var n int64
	err := a.call(ctx, CallUpdate, func() (err error) {
		n, err = a.adapter.UpdateRows(ctx, a.schema.Table, patch, filter)
		return err
	})
	return n, a.wrap(CallUpdate, err)
}

func (a *adapterIO) delete(ctx context.Context, filter record.Filter) (int64, error) {
	var n int64
	err := a.call(ctx, CallDelete, func() (err error) {
		n, err = a.adapter.DeleteRows(ctx, a.schema.Table, filter)
		return err
	})
	return n, a.wrap(CallDelete, err)
}

func (a *adapterIO) selectRows(ctx context.Context, filter record.Filter) ([]record.Row, error) {
	var rows []record.Row
	err := a.call(ctx, CallSelect, func() (err error) {
		rows, err = a.adapter.SelectRows(ctx, a.schema.Table, filter)
		return err
	})
	return rows, a.wrap(CallSelect, err)
}

func (a *adapterIO) call(_ context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	a.obs.ObserveAdapterCall(a.schema.Table, name, time.Since(start), err)
	return err
}

func (a *adapterIO) wrap(call string, err error) error {
	if err == nil {
		return nil
	}
	return record.NewAdapterIO(a.schema.Table, call, err)
}
