package table

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cached-table/record"
)

// Table is a schema bound record collection fronted by a cache. *Proxy is the
// implementation; decorators such as call recorders wrap the interface.
type Table interface {
	Schema() record.Schema
	Strategy() CachingStrategy

	Insert(ctx context.Context, row record.Row) error
	Update(ctx context.Context, patch record.Row, filter record.Filter) error
	Delete(ctx context.Context, filter record.Filter) error
	DeleteByPrimaryKey(ctx context.Context, key record.Key) error

	GetOneByPrimaryKey(ctx context.Context, key record.Key) (record.Row, error)
	GetOne(ctx context.Context, filter record.Filter) (record.Row, error)
	GetMany(ctx context.Context, filter record.Filter) ([]record.Row, error)
	Count(ctx context.Context, filter record.Filter) (int, error)
	HasAny(ctx context.Context, filter record.Filter) (bool, error)
	HasAnyByPrimaryKey(ctx context.Context, key record.Key) (bool, error)

	ClearCache(ctx context.Context) error
	Close(ctx context.Context) error
}

var _ Table = (*Proxy)(nil)

// Proxy binds a schema, a caching strategy, a row cache and a store adapter.
type Proxy struct {
	schema   record.Schema
	kind     CachingStrategy
	strategy strategy
	rows     *rowCache
	logger   *slog.Logger
	obs      Observer
	closed   atomic.Bool
}

// Open validates schema, builds the strategy selected in opts and prepares the
// table. Durable strategies create the table in the store; the eager one also
// loads every row.
func Open(ctx context.Context, schema record.Schema, opts Options) (*Proxy, error) {
	opts = opts.withDefaults()

	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if _, err := ParseCachingStrategy(string(opts.Strategy)); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "cannot open table "+schema.Table)
	}
	if opts.Strategy.Durable() && opts.Adapter == nil {
		return nil, goerrors.New(
			fmt.Sprintf("table %s: strategy %s requires an adapter", schema.Table, opts.Strategy),
			goerrors.CategoryValidation,
		)
	}

	svc, err := opts.RowCache(opts.Strategy, schema)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "cannot build row cache for table "+schema.Table)
	}

	rows := &rowCache{schema: schema, svc: svc, keys: opts.KeySerializer, obs: opts.Observer}
	var adapter *adapterIO
	if opts.Strategy.Durable() {
		adapter = &adapterIO{schema: schema, adapter: opts.Adapter, obs: opts.Observer}
	}

	strat, err := newStrategy(opts.Strategy, rows, adapter)
	if err != nil {
		return nil, err
	}

	p := &Proxy{
		schema:   schema,
		kind:     opts.Strategy,
		strategy: strat,
		rows:     rows,
		logger:   opts.Logger.With("table", schema.Table, "strategy", string(opts.Strategy)),
		obs:      opts.Observer,
	}

	if err := strat.open(ctx); err != nil {
		p.logger.ErrorContext(ctx, "open table failed", "error", err)
		return nil, err
	}
	p.logger.DebugContext(ctx, "table opened", "cached_rows", rows.len())
	return p, nil
}

func (p *Proxy) Schema() record.Schema { return p.schema }

func (p *Proxy) Strategy() CachingStrategy { return p.kind }

// Insert adds a new row. Fields absent from row take their schema default.
func (p *Proxy) Insert(ctx context.Context, row record.Row) (err error) {
	defer p.finish(ctx, OpInsert, &err)
	if err = p.checkOpen(); err != nil {
		return err
	}
	checked, err := p.schema.CheckRow(row)
	if err != nil {
		return err
	}
	return p.strategy.insert(ctx, checked)
}

// Update merges patch into every row selected by filter. A nil filter selects
// every row; matching nothing is not an error.
func (p *Proxy) Update(ctx context.Context, patch record.Row, filter record.Filter) (err error) {
	defer p.finish(ctx, OpUpdate, &err)
	if err = p.checkOpen(); err != nil {
		return err
	}
	checkedPatch, err := p.schema.CheckPatch(patch)
	if err != nil {
		return err
	}
	checkedFilter, err := p.schema.CheckFilter(filter)
	if err != nil {
		return err
	}
	return p.strategy.update(ctx, checkedPatch, checkedFilter)
}

// Delete removes every row selected by filter.
func (p *Proxy) Delete(ctx context.Context, filter record.Filter) (err error) {
	defer p.finish(ctx, OpDelete, &err)
	if err = p.checkOpen(); err != nil {
		return err
	}
	checked, err := p.schema.CheckFilter(filter)
	if err != nil {
		return err
	}
	return p.strategy.delete(ctx, checked)
}

// DeleteByPrimaryKey removes one row. A missing row is a RecordNotFound error.
func (p *Proxy) DeleteByPrimaryKey(ctx context.Context, key record.Key) (err error) {
	defer p.finish(ctx, OpDeleteByPrimaryKey, &err)
	if err = p.checkOpen(); err != nil {
		return err
	}
	checked, err := p.schema.CheckKey(key)
	if err != nil {
		return err
	}
	return p.strategy.deleteByKey(ctx, checked)
}

func (p *Proxy) GetOneByPrimaryKey(ctx context.Context, key record.Key) (_ record.Row, err error) {
	defer p.finish(ctx, OpGetOneByPrimaryKey, &err)
	if err = p.checkOpen(); err != nil {
		return nil, err
	}
	checked, err := p.schema.CheckKey(key)
	if err != nil {
		return nil, err
	}
	row, err := p.strategy.getByKey(ctx, checked)
	if err != nil {
		return nil, err
	}
	return row.Clone(), nil
}

// GetOne returns the first row, in primary key order, selected by filter.
func (p *Proxy) GetOne(ctx context.Context, filter record.Filter) (_ record.Row, err error) {
	defer p.finish(ctx, OpGetOne, &err)
	if err = p.checkOpen(); err != nil {
		return nil, err
	}
	checked, err := p.schema.CheckFilter(filter)
	if err != nil {
		return nil, err
	}

	if key, ok := p.schema.KeyFromFilter(checked); ok {
		row, err := p.strategy.getByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		return row.Clone(), nil
	}

	rows, err := p.strategy.getMany(ctx, checked)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, record.NewRecordNotFound(p.schema.Table, checked)
	}
	return rows[0].Clone(), nil
}

// GetMany returns every row selected by filter in primary key order.
func (p *Proxy) GetMany(ctx context.Context, filter record.Filter) (_ []record.Row, err error) {
	defer p.finish(ctx, OpGetMany, &err)
	if err = p.checkOpen(); err != nil {
		return nil, err
	}
	checked, err := p.schema.CheckFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, err := p.strategy.getMany(ctx, checked)
	if err != nil {
		return nil, err
	}
	out := make([]record.Row, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out, nil
}

func (p *Proxy) Count(ctx context.Context, filter record.Filter) (_ int, err error) {
	defer p.finish(ctx, OpCount, &err)
	return p.count(ctx, filter, 0)
}

func (p *Proxy) HasAny(ctx context.Context, filter record.Filter) (_ bool, err error) {
	defer p.finish(ctx, OpHasAny, &err)
	n, err := p.count(ctx, filter, 1)
	return n > 0, err
}

func (p *Proxy) HasAnyByPrimaryKey(ctx context.Context, key record.Key) (_ bool, err error) {
	defer p.finish(ctx, OpHasAnyByPrimaryKey, &err)
	if err = p.checkOpen(); err != nil {
		return false, err
	}
	checked, err := p.schema.CheckKey(key)
	if err != nil {
		return false, err
	}
	_, err = p.strategy.getByKey(ctx, checked)
	if record.IsRecordNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// ClearCache drops cached rows. Durable strategies reload from the store on
// demand; the testing strategy loses its data.
func (p *Proxy) ClearCache(ctx context.Context) (err error) {
	defer p.finish(ctx, OpClearCache, &err)
	if err = p.checkOpen(); err != nil {
		return err
	}
	return p.strategy.invalidate(ctx)
}

// Close discards the cache. The adapter is left open since it may be shared
// with other tables. Every later call fails.
func (p *Proxy) Close(ctx context.Context) (err error) {
	defer p.finish(ctx, OpClose, &err)
	if p.closed.Swap(true) {
		return nil
	}
	return p.rows.clear(ctx)
}

// count never caches what it reads.
func (p *Proxy) count(ctx context.Context, filter record.Filter, limit int) (int, error) {
	if err := p.checkOpen(); err != nil {
		return 0, err
	}
	checked, err := p.schema.CheckFilter(filter)
	if err != nil {
		return 0, err
	}
	return p.strategy.count(ctx, checked, limit)
}

func (p *Proxy) checkOpen() error {
	if p.closed.Load() {
		return goerrors.New("table "+p.schema.Table+" is closed", goerrors.CategoryOperation).
			WithTextCode("TABLE_CLOSED")
	}
	return nil
}

func (p *Proxy) finish(ctx context.Context, op Operation, errp *error) {
	err := *errp
	p.obs.ObserveOperation(p.schema.Table, p.kind, op, err)
	if err == nil {
		p.logger.DebugContext(ctx, "table operation", "operation", string(op))
		return
	}
	attrs := append([]slog.Attr{
		slog.String("operation", string(op)),
		slog.String("error", err.Error()),
	}, goerrors.ToSlogAttributes(err)...)
	p.logger.LogAttrs(ctx, slog.LevelDebug, "table operation failed", attrs...)
}
