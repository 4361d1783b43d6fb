// Package record defines the data model shared by the table proxy and the record
// store adapters: rows, primary keys, equality filters, table schemas and the
// error taxonomy every layer reports through.
//
// A Row is a plain map from field name to value. A Schema declares which fields a
// table accepts, the kind each value is normalised to and which fields form the
// primary key. All rows, patches, filters and keys crossing the table boundary are
// checked against the schema, so values read back from a durable store compare
// equal to the values that were written:
//
//	schema := record.Schema{
//		Table:      "config",
//		PrimaryKey: []string{"name"},
//		Fields: []record.Field{
//			{Name: "name", Kind: record.KindString},
//			{Name: "value", Kind: record.KindAny, Nullable: true},
//		},
//	}
//
//	row, err := schema.CheckRow(record.Row{"name": "lang", "value": "en"})
//
// # Errors
//
// Every failure is a *errors.Error from github.com/goliatone/go-errors carrying a
// category and a text code. Use the predicates (IsDuplicateKey, IsRecordNotFound,
// IsAdapterIO, IsSchemaMismatch) instead of comparing messages.
package record
