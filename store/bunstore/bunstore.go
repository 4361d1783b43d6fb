// Package bunstore implements store.Adapter on top of a SQL database through
// bun. SQLite (cgo and pure Go drivers) and PostgreSQL are supported.
package bunstore

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	// database/sql drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-cached-table/record"
	"github.com/goliatone/go-cached-table/store"
)

// Driver names accepted by Open.
const (
	DriverSQLite3  = "sqlite3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options configures Open.
type Options struct {
	Driver string
	DSN    string
}

// Store is a bun backed adapter. Table schemas are remembered on CreateTable
// so rows read back can be normalised to their declared kinds.
type Store struct {
	db      *bun.DB
	dialect string

	mu      sync.RWMutex
	schemas map[string]record.Schema
}

var _ store.Adapter = (*Store)(nil)

// Open connects to the database named by opts.
func Open(ctx context.Context, opts Options) (*Store, error) {
	sqldb, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Driver, err)
	}

	var db *bun.DB
	switch opts.Driver {
	case DriverSQLite3, DriverSQLite:
		// in-memory databases are per connection
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres:
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		_ = sqldb.Close()
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", opts.Driver, err)
	}

	return New(db, opts.Driver), nil
}

// New wraps an existing bun database. driver selects the column type mapping.
func New(db *bun.DB, driver string) *Store {
	return &Store{
		db:      db,
		dialect: driver,
		schemas: make(map[string]record.Schema),
	}
}

// DB exposes the underlying bun handle.
func (s *Store) DB() *bun.DB {
	return s.db
}

func (s *Store) CreateTable(ctx context.Context, schema record.Schema) error {
	query, args := createTableQuery(s.dialect, schema)
	if _, err := s.db.NewRaw(query, args...).Exec(ctx); err != nil {
		return fmt.Errorf("create table %s: %w", schema.Table, err)
	}

	s.mu.Lock()
	s.schemas[schema.Table] = schema
	s.mu.Unlock()
	return nil
}

func (s *Store) InsertRow(ctx context.Context, table string, row record.Row) error {
	schema, err := s.schema(table)
	if err != nil {
		return err
	}

	values, err := encodeRow(schema, row)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	_, err = s.db.NewInsert().
		Model(&values).
		TableExpr("?", bun.Ident(table)).
		Exec(ctx)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("insert into %s: %w: %v", table, store.ErrDuplicateKey, err)
		}
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (s *Store) UpdateRows(ctx context.Context, table string, patch record.Row, filter record.Filter) (int64, error) {
	schema, err := s.schema(table)
	if err != nil {
		return 0, err
	}

	values, err := encodeRow(schema, patch)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	where, err := encodeFilter(schema, filter)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	q := s.db.NewUpdate().
		Model(&values).
		TableExpr("?", bun.Ident(table))
	applyFilter(q, where)

	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	return res.RowsAffected()
}

func (s *Store) DeleteRows(ctx context.Context, table string, filter record.Filter) (int64, error) {
	schema, err := s.schema(table)
	if err != nil {
		return 0, err
	}
	where, err := encodeFilter(schema, filter)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}

	q := s.db.NewDelete().TableExpr("?", bun.Ident(table))
	applyFilter(q, where)

	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	return res.RowsAffected()
}

// SelectRows returns matching rows ordered by primary key.
func (s *Store) SelectRows(ctx context.Context, table string, filter record.Filter) ([]record.Row, error) {
	schema, err := s.schema(table)
	if err != nil {
		return nil, err
	}

	where, err := encodeFilter(schema, filter)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}

	q := s.db.NewSelect().TableExpr("?", bun.Ident(table))
	for _, name := range schema.PrimaryKey {
		q = q.OrderExpr("? ASC", bun.Ident(name))
	}
	applyFilter(q, where)

	var raw []map[string]interface{}
	if err := q.Scan(ctx, &raw); err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}

	rows := make([]record.Row, 0, len(raw))
	for _, r := range raw {
		decoded, err := decodeRow(schema, r)
		if err != nil {
			return nil, fmt.Errorf("select from %s: %w", table, err)
		}
		row, err := schema.NormalizeRow(decoded)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) schema(table string) (record.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, ok := s.schemas[table]
	if !ok {
		return record.Schema{}, fmt.Errorf("%s: %w", table, store.ErrUnknownTable)
	}
	return schema, nil
}

// wherer is the part of the bun query builders applyFilter needs.
type wherer[Q any] interface {
	Where(query string, args ...interface{}) Q
}

func applyFilter[Q wherer[Q]](q Q, filter record.Filter) {
	if filter.IsAll() {
		q.Where("1 = 1")
		return
	}
	for _, field := range filter.Fields() {
		v := filter[field]
		if v == nil {
			q.Where("? IS NULL", bun.Ident(field))
			continue
		}
		q.Where("? = ?", bun.Ident(field), v)
	}
}

func createTableQuery(dialect string, schema record.Schema) (string, []interface{}) {
	var b strings.Builder
	args := []interface{}{bun.Ident(schema.Table)}

	b.WriteString("CREATE TABLE IF NOT EXISTS ? (")
	for i, f := range schema.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
		args = append(args, bun.Ident(f.Name))
		if typ := columnType(dialect, f.Kind); typ != "" {
			b.WriteString(" " + typ)
		}
		if !f.Nullable {
			b.WriteString(" NOT NULL")
		}
	}

	b.WriteString(", PRIMARY KEY (")
	for i, name := range schema.PrimaryKey {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
		args = append(args, bun.Ident(name))
	}
	b.WriteString("))")

	return b.String(), args
}

// columnType maps a field kind to a column type. KindAny columns hold tagged
// text in both dialects.
func columnType(dialect string, kind record.Kind) string {
	if dialect == DriverPostgres {
		switch kind {
		case record.KindString, record.KindAny:
			return "TEXT"
		case record.KindInteger:
			return "BIGINT"
		case record.KindReal:
			return "DOUBLE PRECISION"
		case record.KindBool:
			return "BOOLEAN"
		case record.KindBlob:
			return "BYTEA"
		}
		return "TEXT"
	}

	switch kind {
	case record.KindString, record.KindAny:
		return "TEXT"
	case record.KindInteger, record.KindBool:
		return "INTEGER"
	case record.KindReal:
		return "REAL"
	case record.KindBlob:
		return "BLOB"
	}
	return ""
}

// Tags prefixed to KindAny values. Every KindAny column is TEXT so the tag
// carries the Go type across dialects.
const (
	anyString = "s:"
	anyInt    = "i:"
	anyFloat  = "f:"
	anyBool   = "b:"
	anyBytes  = "x:"
	anyJSON   = "j:"
)

// encodeRow prepares values for the driver. KindAny values are stored as
// tagged text, see encodeAny.
func encodeRow(schema record.Schema, row record.Row) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(row))
	for name, v := range row {
		if f, ok := schema.Field(name); ok && f.Kind == record.KindAny {
			enc, err := encodeAny(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			v = enc
		}
		out[name] = v
	}
	return out, nil
}

// encodeFilter applies the KindAny encoding to filter values so equality is
// evaluated on the stored text.
func encodeFilter(schema record.Schema, filter record.Filter) (record.Filter, error) {
	if filter.IsAll() {
		return filter, nil
	}
	row, err := encodeRow(schema, record.Row(filter))
	if err != nil {
		return nil, err
	}
	return record.Filter(row), nil
}

// decodeRow turns tagged KindAny text back into values. SQLite drivers may
// hand back TEXT as byte slices.
func decodeRow(schema record.Schema, raw map[string]interface{}) (record.Row, error) {
	row := record.Row(raw)
	for _, f := range schema.Fields {
		if f.Kind != record.KindAny {
			continue
		}
		v, err := decodeAny(row[f.Name])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		row[f.Name] = v
	}
	return row, nil
}

func encodeAny(v any) (any, error) {
	v, err := record.CanonicalAny(v)
	if err != nil {
		return nil, err
	}

	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return anyString + t, nil
	case int64:
		return anyInt + strconv.FormatInt(t, 10), nil
	case float64:
		return anyFloat + strconv.FormatFloat(t, 'g', -1, 64), nil
	case bool:
		return anyBool + strconv.FormatBool(t), nil
	case []byte:
		return anyBytes + hex.EncodeToString(t), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return anyJSON + string(data), nil
}

func decodeAny(raw any) (any, error) {
	var text string
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		text = t
	case []byte:
		text = string(t)
	default:
		// written by something other than this store
		return record.CanonicalAny(t)
	}

	if len(text) < 2 {
		return text, nil
	}
	tag, body := text[:2], text[2:]
	switch tag {
	case anyString:
		return body, nil
	case anyInt:
		return strconv.ParseInt(body, 10, 64)
	case anyFloat:
		return strconv.ParseFloat(body, 64)
	case anyBool:
		return strconv.ParseBool(body)
	case anyBytes:
		return hex.DecodeString(body)
	case anyJSON:
		return record.DecodeJSON([]byte(body))
	}
	return text, nil
}
