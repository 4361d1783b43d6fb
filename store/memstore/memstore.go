// Package memstore is an in-process implementation of store.Adapter. It keeps
// every table in memory and is meant for tests, demos and ephemeral sites.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-cached-table/cache"
	"github.com/goliatone/go-cached-table/record"
	"github.com/goliatone/go-cached-table/store"
)

// Store holds tables keyed by name.
type Store struct {
	tables     *xsync.MapOf[string, *memTable]
	serializer cache.KeySerializer
	closed     atomic.Bool
}

type memTable struct {
	mu     sync.RWMutex
	schema record.Schema
	rows   map[string]record.Row
}

var _ store.Adapter = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		tables:     xsync.NewMapOf[string, *memTable](),
		serializer: cache.NewDefaultKeySerializer(),
	}
}

func (s *Store) CreateTable(_ context.Context, schema record.Schema) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.tables.LoadOrStore(schema.Table, &memTable{
		schema: schema,
		rows:   make(map[string]record.Row),
	})
	return nil
}

func (s *Store) InsertRow(_ context.Context, table string, row record.Row) error {
	t, err := s.table(table)
	if err != nil {
		return err
	}

	key := s.rowKey(t.schema, row)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rows[key]; exists {
		return fmt.Errorf("%s %s: %w", table, key, store.ErrDuplicateKey)
	}
	t.rows[key] = row.Clone()
	return nil
}

func (s *Store) UpdateRows(_ context.Context, table string, patch record.Row, filter record.Filter) (int64, error) {
	t, err := s.table(table)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var n int64
	for key, row := range t.rows {
		if !filter.Match(row) {
			continue
		}
		t.rows[key] = row.Merge(patch.Clone())
		n++
	}
	return n, nil
}

func (s *Store) DeleteRows(_ context.Context, table string, filter record.Filter) (int64, error) {
	t, err := s.table(table)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var n int64
	for key, row := range t.rows {
		if filter.Match(row) {
			delete(t.rows, key)
			n++
		}
	}
	return n, nil
}

// SelectRows returns copies of the matching rows ordered by primary key.
func (s *Store) SelectRows(_ context.Context, table string, filter record.Filter) ([]record.Row, error) {
	t, err := s.table(table)
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []record.Row
	for _, row := range t.rows {
		if filter.Match(row) {
			out = append(out, row.Clone())
		}
	}
	t.schema.SortRows(out)
	return out, nil
}

// Close drops every table. Later calls fail.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.tables.Clear()
	return nil
}

// Tables returns the names of the tables created so far.
func (s *Store) Tables() []string {
	var names []string
	s.tables.Range(func(name string, _ *memTable) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

func (s *Store) table(name string) (*memTable, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	t, ok := s.tables.Load(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, store.ErrUnknownTable)
	}
	return t, nil
}

func (s *Store) checkOpen() error {
	if s.closed.Load() {
		return fmt.Errorf("memstore: store is closed")
	}
	return nil
}

func (s *Store) rowKey(schema record.Schema, row record.Row) string {
	return s.serializer.SerializeKey(schema.Table, schema.KeyValues(schema.KeyOf(row))...)
}
