package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CanonicalAny converts a KindAny value to the form every adapter hands back.
// Integers of any width become int64 and float32 becomes float64. Strings,
// bools and byte slices are kept. Anything else (maps, slices, structs) is
// passed through encoding/json and decoded with DecodeJSON, so a cached value
// and the same value read back from a store are deeply equal.
func CanonicalAny(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, int64, float64:
		return t, nil
	case []byte:
		return bytes.Clone(t), nil
	}
	if i, ok := asInt64(v); ok {
		return i, nil
	}
	if f, ok := asFloat64(v); ok {
		return f, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cannot use %T as %s: %w", v, KindAny, err)
	}
	return DecodeJSON(data)
}

// DecodeJSON decodes a JSON document into maps, slices and scalars. Numbers
// without a fraction or exponent that fit in int64 decode as int64, all other
// numbers as float64.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return fromJSON(out), nil
}

func fromJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = fromJSON(t[i])
		}
		return t
	case map[string]any:
		for k, e := range t {
			t[k] = fromJSON(e)
		}
		return t
	}
	return v
}

// cloneAny copies the maps and slices of a canonical KindAny value.
func cloneAny(v any) any {
	switch t := v.(type) {
	case []byte:
		return bytes.Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneAny(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneAny(e)
		}
		return out
	}
	return v
}
