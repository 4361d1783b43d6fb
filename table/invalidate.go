package table

import (
	"context"

	"github.com/goliatone/go-cached-table/record"
)

// ExpirationField is the field the invalidation hook resets.
const ExpirationField = "expirationTime"

// InvalidateExpiration marks the rows selected by filter as expired by setting
// their expirationTime to zero. Rows are kept; readers treat them as stale.
// A nil filter marks every row. Calling it twice has the same effect as once.
func InvalidateExpiration(ctx context.Context, t Table, filter record.Filter) error {
	return ExpireField(ctx, t, ExpirationField, filter)
}

// ExpireField sets field to zero on every row selected by filter through
// Table.Update, so the cache and the store change together.
func ExpireField(ctx context.Context, t Table, field string, filter record.Filter) error {
	return t.Update(ctx, record.Row{field: int64(0)}, filter)
}
