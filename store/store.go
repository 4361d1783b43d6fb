// Package store defines the contract between a cached table and the durable
// record store behind it.
package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-cached-table/record"
)

var (
	// ErrDuplicateKey is wrapped by adapters when an insert collides with an
	// existing primary key.
	ErrDuplicateKey = errors.New("store: duplicate primary key")

	// ErrUnknownTable is wrapped by adapters when a table was never created.
	ErrUnknownTable = errors.New("store: unknown table")
)

// Adapter is a durable record store. Implementations must be safe for
// concurrent use. Rows passed in are owned by the caller and rows returned
// are owned by the caller.
type Adapter interface {
	// CreateTable makes sure the table described by schema exists. It is
	// idempotent.
	CreateTable(ctx context.Context, schema record.Schema) error

	InsertRow(ctx context.Context, table string, row record.Row) error

	// UpdateRows applies patch to every row matching filter and returns how
	// many rows matched. A nil filter matches every row.
	UpdateRows(ctx context.Context, table string, patch record.Row, filter record.Filter) (int64, error)

	// DeleteRows removes every row matching filter and returns how many
	// rows were removed. A nil filter matches every row.
	DeleteRows(ctx context.Context, table string, filter record.Filter) (int64, error)

	SelectRows(ctx context.Context, table string, filter record.Filter) ([]record.Row, error)

	Close() error
}
