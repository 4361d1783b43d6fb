package record

import (
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// Field declares a single column of a table.
type Field struct {
	Name     string
	Kind     Kind
	Nullable bool
	// Default is applied on insert when the field is absent.
	Default any
}

// Schema describes a table: its name, fields and primary key. A schema is bound
// to a table when it is opened and never changes afterwards.
type Schema struct {
	Table      string
	PrimaryKey []string
	Fields     []Field
}

// Validate checks that the schema itself is well formed.
func (s Schema) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Table, validation.Required),
		validation.Field(&s.Fields, validation.Required, validation.By(uniqueFieldNames)),
		validation.Field(&s.PrimaryKey, validation.Required, validation.By(s.declaredKeyFields)),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, fmt.Sprintf("invalid schema for table %q", s.Table)).
			WithTextCode(TextCodeSchemaMismatch)
	}
	return nil
}

func uniqueFieldNames(value any) error {
	fields, _ := value.([]Field)
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("field names cannot be blank")
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("field %q declared twice", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func (s Schema) declaredKeyFields(value any) error {
	names, _ := value.([]string)
	for _, name := range names {
		f, ok := s.Field(name)
		if !ok {
			return fmt.Errorf("primary key field %q is not declared", name)
		}
		if f.Nullable {
			return fmt.Errorf("primary key field %q cannot be nullable", name)
		}
	}
	return nil
}

// Field returns the declared field with the given name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// IsPrimaryKey reports whether name is part of the primary key.
func (s Schema) IsPrimaryKey(name string) bool {
	return slices.Contains(s.PrimaryKey, name)
}

// KeyOf extracts the primary key from a row that already passed CheckRow.
func (s Schema) KeyOf(row Row) Key {
	key := make(Key, len(s.PrimaryKey))
	for _, name := range s.PrimaryKey {
		key[name] = row[name]
	}
	return key
}

// KeyValues returns the key values ordered like the primary key declaration.
func (s Schema) KeyValues(key Key) []any {
	values := make([]any, len(s.PrimaryKey))
	for i, name := range s.PrimaryKey {
		values[i] = key[name]
	}
	return values
}

// CheckRow validates a full row for insertion. Defaults are applied to absent
// fields and every value is normalised to its declared kind.
func (s Schema) CheckRow(row Row) (Row, error) {
	if row == nil {
		return nil, NewSchemaMismatch(s.Table, "row is nil")
	}

	var fieldErrors []goerrors.FieldError
	for name := range row {
		if _, ok := s.Field(name); !ok {
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: name, Message: "unknown field"})
		}
	}

	out := make(Row, len(s.Fields))
	for _, f := range s.Fields {
		v, present := row[f.Name]
		if !present && f.Default != nil {
			v, present = f.Default, true
		}
		if !present || v == nil {
			if f.Nullable {
				out[f.Name] = nil
				continue
			}
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: f.Name, Message: "value is required"})
			continue
		}
		nv, err := f.Kind.Normalize(v)
		if err != nil {
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: f.Name, Message: err.Error(), Value: v})
			continue
		}
		out[f.Name] = nv
	}

	if len(fieldErrors) > 0 {
		return nil, NewSchemaMismatch(s.Table, "row does not match schema", sortFieldErrors(fieldErrors)...)
	}
	return out, nil
}

// CheckPatch validates a partial row used by updates. Primary key fields are
// immutable and rejected.
func (s Schema) CheckPatch(patch Row) (Row, error) {
	if len(patch) == 0 {
		return nil, NewSchemaMismatch(s.Table, "patch is empty")
	}

	var fieldErrors []goerrors.FieldError
	out := make(Row, len(patch))
	for name, v := range patch {
		f, ok := s.Field(name)
		switch {
		case !ok:
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: name, Message: "unknown field"})
			continue
		case s.IsPrimaryKey(name):
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: name, Message: "primary key is immutable"})
			continue
		case v == nil && !f.Nullable:
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: name, Message: "value is required"})
			continue
		}
		nv, err := f.Kind.Normalize(v)
		if err != nil {
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: name, Message: err.Error(), Value: v})
			continue
		}
		out[name] = nv
	}

	if len(fieldErrors) > 0 {
		return nil, NewSchemaMismatch(s.Table, "patch does not match schema", sortFieldErrors(fieldErrors)...)
	}
	return out, nil
}

// CheckFilter validates a filter. A nil filter stays nil and selects all rows.
func (s Schema) CheckFilter(filter Filter) (Filter, error) {
	if filter == nil {
		return nil, nil
	}

	var fieldErrors []goerrors.FieldError
	out := make(Filter, len(filter))
	for name, v := range filter {
		f, ok := s.Field(name)
		if !ok {
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: name, Message: "unknown field"})
			continue
		}
		nv, err := f.Kind.Normalize(v)
		if err != nil {
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: name, Message: err.Error(), Value: v})
			continue
		}
		out[name] = nv
	}

	if len(fieldErrors) > 0 {
		return nil, NewSchemaMismatch(s.Table, "filter does not match schema", sortFieldErrors(fieldErrors)...)
	}
	return out, nil
}

// CheckKey validates a primary key: exactly the key fields, none of them nil.
func (s Schema) CheckKey(key Key) (Key, error) {
	var fieldErrors []goerrors.FieldError
	for name := range key {
		if !s.IsPrimaryKey(name) {
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: name, Message: "not a primary key field"})
		}
	}

	out := make(Key, len(s.PrimaryKey))
	for _, name := range s.PrimaryKey {
		v, ok := key[name]
		if !ok || v == nil {
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: name, Message: "primary key value is required"})
			continue
		}
		f, _ := s.Field(name)
		nv, err := f.Kind.Normalize(v)
		if err != nil {
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: name, Message: err.Error(), Value: v})
			continue
		}
		out[name] = nv
	}

	if len(fieldErrors) > 0 {
		return nil, NewSchemaMismatch(s.Table, "key does not match schema", sortFieldErrors(fieldErrors)...)
	}
	return out, nil
}

// KeyFromFilter returns the primary key when the filter selects exactly one
// primary key value and nothing else.
func (s Schema) KeyFromFilter(filter Filter) (Key, bool) {
	if len(filter) != len(s.PrimaryKey) {
		return nil, false
	}
	key := make(Key, len(filter))
	for _, name := range s.PrimaryKey {
		v, ok := filter[name]
		if !ok || v == nil {
			return nil, false
		}
		key[name] = v
	}
	return key, true
}

// NormalizeRow coerces a row read back from a store to the declared kinds.
// Columns the schema does not know are dropped.
func (s Schema) NormalizeRow(row Row) (Row, error) {
	out := make(Row, len(s.Fields))
	for _, f := range s.Fields {
		v, ok := row[f.Name]
		if !ok || v == nil {
			out[f.Name] = nil
			continue
		}
		nv, err := f.Kind.Normalize(v)
		if err != nil {
			return nil, NewSchemaMismatch(s.Table, fmt.Sprintf("stored value for %q: %v", f.Name, err))
		}
		out[f.Name] = nv
	}
	return out, nil
}

func sortFieldErrors(errs []goerrors.FieldError) []goerrors.FieldError {
	slices.SortFunc(errs, func(a, b goerrors.FieldError) int {
		if a.Field < b.Field {
			return -1
		}
		if a.Field > b.Field {
			return 1
		}
		return 0
	})
	return errs
}

// CompareRows orders two rows by their primary key values.
func (s Schema) CompareRows(a, b Row) int {
	for _, name := range s.PrimaryKey {
		if c := compareValues(a[name], b[name]); c != 0 {
			return c
		}
	}
	return 0
}

// SortRows sorts rows in place by primary key.
func (s Schema) SortRows(rows []Row) {
	slices.SortFunc(rows, s.CompareRows)
}
