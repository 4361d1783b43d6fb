package record

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to every error produced by the table layer.
const (
	TextCodeDuplicateKey   = "DUPLICATE_KEY"
	TextCodeRecordNotFound = "RECORD_NOT_FOUND"
	TextCodeAdapterIO      = "ADAPTER_IO"
	TextCodeSchemaMismatch = "SCHEMA_MISMATCH"
)

// NewDuplicateKey reports an insert whose primary key already exists.
func NewDuplicateKey(table string, key Key) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("duplicate primary key %s in table %s", formatKey(key), table), goerrors.CategoryConflict).
		WithTextCode(TextCodeDuplicateKey).
		WithMetadata(map[string]any{"table": table, "key": map[string]any(key)})
}

// NewRecordNotFound reports a single-row lookup or delete that matched nothing.
func NewRecordNotFound(table string, filter Filter) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("record %s not found in table %s", formatKey(Key(filter)), table), goerrors.CategoryNotFound).
		WithTextCode(TextCodeRecordNotFound).
		WithMetadata(map[string]any{"table": table})
}

// NewAdapterIO wraps a failure returned by a record store adapter. The source
// error stays reachable through errors.Is and errors.As.
func NewAdapterIO(table, operation string, source error) *goerrors.Error {
	if source == nil {
		return nil
	}
	err := goerrors.New(fmt.Sprintf("%s on table %s failed", operation, table), goerrors.CategoryExternal).
		WithTextCode(TextCodeAdapterIO).
		WithMetadata(map[string]any{"table": table, "operation": operation})
	err.Source = source
	return err
}

// NewSchemaMismatch reports a row, patch, filter or key that violates the table
// schema. It signals a programming error and must not be retried.
func NewSchemaMismatch(table, message string, fieldErrors ...goerrors.FieldError) *goerrors.Error {
	err := goerrors.NewValidation(fmt.Sprintf("%s: %s", table, message), fieldErrors...).
		WithTextCode(TextCodeSchemaMismatch)
	return err.WithMetadata(map[string]any{"table": table})
}

// IsDuplicateKey reports whether err is a duplicate primary key error.
func IsDuplicateKey(err error) bool {
	return hasTextCode(err, TextCodeDuplicateKey)
}

// IsRecordNotFound reports whether err is a missing record error.
func IsRecordNotFound(err error) bool {
	return hasTextCode(err, TextCodeRecordNotFound)
}

// IsAdapterIO reports whether err wraps a record store adapter failure.
func IsAdapterIO(err error) bool {
	return hasTextCode(err, TextCodeAdapterIO)
}

// IsSchemaMismatch reports whether err is a schema violation.
func IsSchemaMismatch(err error) bool {
	return hasTextCode(err, TextCodeSchemaMismatch)
}

// ErrorKind returns the text code of the first table error in the chain, or an
// empty string when err is not one of ours.
func ErrorKind(err error) string {
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		return e.TextCode
	}
	return ""
}

func hasTextCode(err error, code string) bool {
	for err != nil {
		var e *goerrors.Error
		if !goerrors.As(err, &e) {
			return false
		}
		if e.TextCode == code {
			return true
		}
		err = e.Source
	}
	return false
}

func formatKey(key Key) string {
	if len(key) == 0 {
		return "{}"
	}
	row := Row(key)
	out := "{"
	for i, field := range row.Fields() {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %v", field, key[field])
	}
	return out + "}"
}
