package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// defaultKeySerializer tags every part with its value class so values that
// print the same but compare differently ("1" and 1) never share a key.
// Integers of any width share a tag, matching how rows compare field values.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey joins the namespace and the serialized parts with KeySeparator.
// Separators inside string values are escaped, so a part can never be
// mistaken for two.
func (s *defaultKeySerializer) SerializeKey(namespace string, parts ...any) string {
	var b strings.Builder
	b.WriteString(escape(namespace))
	for _, part := range parts {
		b.WriteString(KeySeparator)
		b.WriteString(s.serializeValue(part))
	}
	return b.String()
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "n"
	}

	switch t := v.(type) {
	case string:
		return "s:" + escape(t)
	case []byte:
		return "x:" + hex.EncodeToString(t)
	case bool:
		return "b:" + strconv.FormatBool(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "i:" + strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "i:" + strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == float64(int64(f)) {
			return "i:" + strconv.FormatInt(int64(f), 10)
		}
		return "f:" + strconv.FormatFloat(f, 'g', -1, 64)
	case reflect.Ptr:
		if rv.IsNil() {
			return "n"
		}
		return s.serializeValue(rv.Elem().Interface())
	}

	return s.jsonFallback(v)
}

// jsonFallback handles composite values. encoding/json sorts map keys, which
// keeps the output stable.
func (s *defaultKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "t:" + escape(fmt.Sprintf("%T:%v", v, v))
	}
	return "j:" + escape(string(data))
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`)

func escape(s string) string {
	return keyEscaper.Replace(s)
}
