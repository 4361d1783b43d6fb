//go:build !cgo

package bunstore

// isCgoSQLiteDuplicateKey is a no-op without cgo: the mattn/go-sqlite3 driver
// cannot open connections (and so never returns sqlite3.Error) in that build.
func isCgoSQLiteDuplicateKey(err error) (dup bool, ok bool) {
	return false, false
}
