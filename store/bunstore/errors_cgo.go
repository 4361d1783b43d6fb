//go:build cgo

package bunstore

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// isCgoSQLiteDuplicateKey inspects errors raised by the cgo sqlite3 driver.
// ok is false when err is not a sqlite3.Error.
func isCgoSQLiteDuplicateKey(err error) (dup bool, ok bool) {
	var cgoErr sqlite3.Error
	if errors.As(err, &cgoErr) {
		return cgoErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			cgoErr.ExtendedCode == sqlite3.ErrConstraintUnique, true
	}
	return false, false
}
