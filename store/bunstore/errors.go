package bunstore

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const pqUniqueViolation = pq.ErrorCode("23505")

// isDuplicateKey reports whether err is a primary key or unique constraint
// violation raised by any of the supported drivers.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	if dup, ok := isCgoSQLiteDuplicateKey(err); ok {
		return dup
	}

	var pureErr *msqlite.Error
	if errors.As(err, &pureErr) {
		switch pureErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == pqUniqueViolation
	}

	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed")
}
