package bunstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-cached-table/record"
	"github.com/goliatone/go-cached-table/store"
)

var wsCacheSchema = record.Schema{
	Table:      "site_wscache",
	PrimaryKey: []string{"id"},
	Fields: []record.Field{
		{Name: "id", Kind: record.KindString},
		{Name: "data", Kind: record.KindString, Nullable: true},
		{Name: "componentId", Kind: record.KindInteger, Nullable: true},
		{Name: "expirationTime", Kind: record.KindInteger},
		{Name: "pinned", Kind: record.KindBool},
		{Name: "value", Kind: record.KindAny, Nullable: true},
	},
}

func openStores(t *testing.T) map[string]*Store {
	t.Helper()
	ctx := context.Background()

	stores := map[string]*Store{}
	for driver, dsn := range map[string]string{
		DriverSQLite3: ":memory:",
		DriverSQLite:  ":memory:",
	} {
		s, err := Open(ctx, Options{Driver: driver, DSN: dsn})
		require.NoError(t, err, driver)
		require.NoError(t, s.CreateTable(ctx, wsCacheSchema), driver)
		t.Cleanup(func() { _ = s.Close() })
		stores[driver] = s
	}
	return stores
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestCreateTableQuery(t *testing.T) {
	query, args := createTableQuery(DriverPostgres, wsCacheSchema)

	assert.True(t, strings.HasPrefix(query, "CREATE TABLE IF NOT EXISTS ? ("))
	assert.Contains(t, query, "? BIGINT NOT NULL")
	assert.Contains(t, query, "? BOOLEAN NOT NULL")
	assert.Contains(t, query, "PRIMARY KEY (?)")
	assert.Len(t, args, 1+len(wsCacheSchema.Fields)+len(wsCacheSchema.PrimaryKey))

	query, _ = createTableQuery(DriverSQLite, wsCacheSchema)
	assert.Contains(t, query, "? INTEGER NOT NULL")
	assert.Contains(t, query, "? TEXT")
	assert.NotContains(t, query, "BOOLEAN")
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for driver, s := range openStores(t) {
		t.Run(driver, func(t *testing.T) {
			row := record.Row{
				"id":             "a",
				"data":           "payload",
				"componentId":    int64(7),
				"expirationTime": int64(200),
				"pinned":         true,
				"value":          int64(42),
			}
			require.NoError(t, s.InsertRow(ctx, wsCacheSchema.Table, row))

			rows, err := s.SelectRows(ctx, wsCacheSchema.Table, record.Filter{"id": "a"})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, row, rows[0])
		})
	}
}

func TestStore_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	for driver, s := range openStores(t) {
		t.Run(driver, func(t *testing.T) {
			row := record.Row{"id": "dup", "expirationTime": int64(0), "pinned": false}
			require.NoError(t, s.InsertRow(ctx, wsCacheSchema.Table, row))

			err := s.InsertRow(ctx, wsCacheSchema.Table, row)
			assert.ErrorIs(t, err, store.ErrDuplicateKey)
		})
	}
}

func TestStore_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	for driver, s := range openStores(t) {
		t.Run(driver, func(t *testing.T) {
			for _, id := range []string{"a", "b", "c"} {
				require.NoError(t, s.InsertRow(ctx, wsCacheSchema.Table, record.Row{
					"id": id, "expirationTime": int64(100), "pinned": false,
				}))
			}

			n, err := s.UpdateRows(ctx, wsCacheSchema.Table, record.Row{"expirationTime": int64(0)}, nil)
			require.NoError(t, err)
			assert.EqualValues(t, 3, n)

			n, err = s.UpdateRows(ctx, wsCacheSchema.Table, record.Row{"data": "x"}, record.Filter{"id": "b"})
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)

			rows, err := s.SelectRows(ctx, wsCacheSchema.Table, record.Filter{"data": nil})
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "a", rows[0]["id"])
			assert.Equal(t, "c", rows[1]["id"])
			assert.Equal(t, int64(0), rows[0]["expirationTime"])

			n, err = s.DeleteRows(ctx, wsCacheSchema.Table, record.Filter{"id": "missing"})
			require.NoError(t, err)
			assert.EqualValues(t, 0, n)

			n, err = s.DeleteRows(ctx, wsCacheSchema.Table, nil)
			require.NoError(t, err)
			assert.EqualValues(t, 3, n)
		})
	}
}

func TestStore_UnknownTable(t *testing.T) {
	for driver, s := range openStores(t) {
		t.Run(driver, func(t *testing.T) {
			_, err := s.SelectRows(context.Background(), "missing", nil)
			assert.ErrorIs(t, err, store.ErrUnknownTable)
		})
	}
}

func TestEncodeAny(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{in: nil, want: nil},
		{in: "text", want: "s:text"},
		{in: 5, want: "i:5"},
		{in: 1.5, want: "f:1.5"},
		{in: true, want: "b:true"},
		{in: []byte{0xca, 0xfe}, want: "x:cafe"},
		{in: map[string]int{"a": 1}, want: `j:{"a":1}`},
		{in: []int{1, 2}, want: `j:[1,2]`},
	}

	for _, tt := range tests {
		got, err := encodeAny(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%#v", tt.in)
	}

	_, err := encodeAny(make(chan int))
	assert.Error(t, err)
}

func TestStore_AnyRoundTrip(t *testing.T) {
	ctx := context.Background()
	values := map[string]any{
		"string": "test 1",
		"int":    int64(200),
		"float":  2.5,
		"bool":   true,
		"bytes":  []byte("raw"),
		"map":    map[string]any{"a": int64(1), "b": []any{"x", false}},
		"slice":  []any{"x", int64(2)},
		"null":   nil,
	}

	for driver, s := range openStores(t) {
		t.Run(driver, func(t *testing.T) {
			for id, v := range values {
				row := record.Row{"id": id, "expirationTime": int64(0), "pinned": false, "value": v}
				require.NoError(t, s.InsertRow(ctx, wsCacheSchema.Table, row))
			}

			for id, want := range values {
				rows, err := s.SelectRows(ctx, wsCacheSchema.Table, record.Filter{"id": id})
				require.NoError(t, err)
				require.Len(t, rows, 1)
				assert.Equal(t, want, rows[0]["value"], id)
			}

			rows, err := s.SelectRows(ctx, wsCacheSchema.Table, record.Filter{"value": true})
			require.NoError(t, err)
			require.Len(t, rows, 1, "filters compare encoded values")
			assert.Equal(t, "bool", rows[0]["id"])

			n, err := s.UpdateRows(ctx, wsCacheSchema.Table, record.Row{"value": []any{"y"}}, record.Filter{"value": "test 1"})
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			rows, err = s.SelectRows(ctx, wsCacheSchema.Table, record.Filter{"id": "string"})
			require.NoError(t, err)
			assert.Equal(t, []any{"y"}, rows[0]["value"])
		})
	}
}

func TestDecodeRow(t *testing.T) {
	row, err := decodeRow(wsCacheSchema, map[string]interface{}{
		"id":    "a",
		"data":  []byte("kept for the schema"),
		"value": []byte(`j:{"n":3}`),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": int64(3)}, row["value"])
	assert.Equal(t, []byte("kept for the schema"), row["data"], "typed fields are left to NormalizeRow")

	row, err = decodeRow(wsCacheSchema, map[string]interface{}{"value": "untagged"})
	require.NoError(t, err)
	assert.Equal(t, "untagged", row["value"])

	_, err = decodeRow(wsCacheSchema, map[string]interface{}{"value": "i:nope"})
	assert.Error(t, err)
}
