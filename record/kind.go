package record

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"reflect"
)

// Kind is the storage kind a field value is normalised to.
type Kind int

const (
	// KindAny accepts any value and normalises it to its JSON shaped form,
	// see CanonicalAny.
	KindAny Kind = iota
	// KindString normalises to string.
	KindString
	// KindInteger normalises to int64.
	KindInteger
	// KindReal normalises to float64.
	KindReal
	// KindBool normalises to bool.
	KindBool
	// KindBlob normalises to []byte.
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBool:
		return "bool"
	case KindBlob:
		return "blob"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Normalize converts v to the canonical Go type for the kind. Nil values are
// returned as nil; deciding whether nil is acceptable is up to the schema.
func (k Kind) Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if k == KindAny {
		return CanonicalAny(v)
	}

	switch k {
	case KindString:
		switch t := v.(type) {
		case string:
			return t, nil
		case []byte:
			return string(t), nil
		}
	case KindBlob:
		switch t := v.(type) {
		case []byte:
			return bytes.Clone(t), nil
		case string:
			return []byte(t), nil
		}
	case KindInteger:
		if i, ok := asInt64(v); ok {
			return i, nil
		}
		if f, ok := asFloat64(v); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f), nil
		}
		if b, ok := v.(bool); ok {
			if b {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case KindReal:
		if f, ok := asFloat64(v); ok {
			return f, nil
		}
		if i, ok := asInt64(v); ok {
			return float64(i), nil
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		if i, ok := asInt64(v); ok && (i == 0 || i == 1) {
			return i == 1, nil
		}
	}

	return nil, fmt.Errorf("cannot use %T as %s", v, k)
}

func asInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// valuesEqual compares two field values. Numbers compare by value regardless
// of their Go width so untyped KindAny values still match.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if ai, ok := asInt64(a); ok {
		if bi, ok := asInt64(b); ok {
			return ai == bi
		}
		if bf, ok := asFloat64(b); ok {
			return float64(ai) == bf
		}
		return false
	}
	if af, ok := asFloat64(a); ok {
		if bf, ok := asFloat64(b); ok {
			return af == bf
		}
		if bi, ok := asInt64(b); ok {
			return af == float64(bi)
		}
		return false
	}

	if ab, ok := a.([]byte); ok {
		if bb, ok := b.([]byte); ok {
			return bytes.Equal(ab, bb)
		}
		if bs, ok := b.(string); ok {
			return string(ab) == bs
		}
		return false
	}
	if as, ok := a.(string); ok {
		if bb, ok := b.([]byte); ok {
			return as == string(bb)
		}
	}

	return reflect.DeepEqual(a, b)
}

// compareValues orders two field values. Nil sorts first, numbers compare by
// value and everything else falls back to its printed form.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	af, aNum := asNumber(a)
	bf, bNum := asNumber(b)
	if aNum && bNum {
		return cmp.Compare(af, bf)
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}

	return cmp.Compare(printable(a), printable(b))
}

func asNumber(v any) (float64, bool) {
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return asFloat64(v)
}

func printable(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	}
	return fmt.Sprint(v)
}
