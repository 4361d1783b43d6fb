package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type keyScenario struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Cases       []keyCase `json:"cases"`
}

type keyCase struct {
	Namespace   string `json:"namespace"`
	Parts       []any  `json:"parts"`
	ExpectedKey string `json:"expectedKey"`
}

type keyFixtures struct {
	Scenarios []keyScenario `json:"scenarios"`
}

func joinWithSeparator(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

func TestDefaultKeySerializer_BasicTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name      string
		namespace string
		parts     []any
		want      string
	}{
		{name: "namespace only", namespace: "config", want: "config"},
		{name: "string", namespace: "config", parts: []any{"theme"}, want: joinWithSeparator("config", "s:theme")},
		{name: "int", namespace: "users", parts: []any{42}, want: joinWithSeparator("users", "i:42")},
		{name: "int64 and int agree", namespace: "users", parts: []any{int64(42)}, want: joinWithSeparator("users", "i:42")},
		{name: "uint", namespace: "users", parts: []any{uint8(7)}, want: joinWithSeparator("users", "i:7")},
		{name: "integral float", namespace: "users", parts: []any{3.0}, want: joinWithSeparator("users", "i:3")},
		{name: "fractional float", namespace: "users", parts: []any{3.25}, want: joinWithSeparator("users", "f:3.25")},
		{name: "bool", namespace: "flags", parts: []any{true}, want: joinWithSeparator("flags", "b:true")},
		{name: "bytes", namespace: "blobs", parts: []any{[]byte{0xca, 0xfe}}, want: joinWithSeparator("blobs", "x:cafe")},
		{name: "nil", namespace: "t", parts: []any{nil}, want: joinWithSeparator("t", "n")},
		{name: "nil pointer", namespace: "t", parts: []any{(*int)(nil)}, want: joinWithSeparator("t", "n")},
		{name: "composite", namespace: "grades", parts: []any{1, "math"}, want: joinWithSeparator("grades", "i:1", "s:math")},
		{name: "map fallback", namespace: "t", parts: []any{map[string]int{"b": 2, "a": 1}}, want: joinWithSeparator("t", `j:{"a"\:1,"b"\:2}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.namespace, tt.parts...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_NoCollisions(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	pairs := [][2][]any{
		{{"1"}, {1}},
		{{"a::b"}, {"a", "b"}},
		{{"a:", ":b"}, {"a::", "b"}},
		{{true}, {"true"}},
		{{nil}, {"n"}},
		{{[]byte("ab")}, {"ab"}},
	}

	for _, pair := range pairs {
		a := serializer.SerializeKey("t", pair[0]...)
		b := serializer.SerializeKey("t", pair[1]...)
		if a == b {
			t.Errorf("%v and %v collide on %q", pair[0], pair[1], a)
		}
	}
}

func TestDefaultKeySerializer_Fixtures(t *testing.T) {
	serializer := NewDefaultKeySerializer()
	fixtures := loadKeyFixtures(t)

	for _, scenario := range fixtures.Scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			for _, tc := range scenario.Cases {
				got := serializer.SerializeKey(tc.Namespace, tc.Parts...)
				if got != tc.ExpectedKey {
					t.Errorf("SerializeKey(%q, %v) = %q, want %q", tc.Namespace, tc.Parts, got, tc.ExpectedKey)
				}
			}
		})
	}
}

func TestDefaultKeySerializer_Stability(t *testing.T) {
	serializer := NewDefaultKeySerializer()
	parts := []any{"name", int64(5), map[string]any{"z": 1, "a": []int{1, 2}}}

	first := serializer.SerializeKey("stable", parts...)
	for i := 0; i < 10; i++ {
		if got := serializer.SerializeKey("stable", parts...); got != first {
			t.Fatalf("key changed between calls: %q != %q", got, first)
		}
	}
}

func TestDefaultKeySerializer_NamespacePrefix(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	for _, ns := range []string{"settings", "a::b", `c\d`} {
		prefix := serializer.SerializeKey(ns) + KeySeparator
		key := serializer.SerializeKey(ns, "x", 1)
		if !strings.HasPrefix(key, prefix) {
			t.Errorf("key %q does not start with namespace prefix %q", key, prefix)
		}
	}

	other := serializer.SerializeKey("a::b", "x")
	if strings.HasPrefix(other, serializer.SerializeKey("a")+KeySeparator) {
		t.Errorf("key %q of namespace a::b matches the prefix of namespace a", other)
	}
}

func loadKeyFixtures(t *testing.T) keyFixtures {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "key_serializer_scenarios.json"))
	if err != nil {
		t.Fatalf("Failed to read fixture file: %v", err)
	}

	var fixtures keyFixtures
	if err := json.Unmarshal(data, &fixtures); err != nil {
		t.Fatalf("Failed to unmarshal fixture data: %v", err)
	}
	return fixtures
}

func BenchmarkDefaultKeySerializer(b *testing.B) {
	serializer := NewDefaultKeySerializer()
	parts := []any{int64(1), "benchmark"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		serializer.SerializeKey("bench", parts...)
	}
}
