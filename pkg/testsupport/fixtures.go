package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-cached-table/record"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// LoadRows reads a JSON array of objects and checks every row against schema,
// so JSON numbers come back as the declared kinds.
func LoadRows(t testing.TB, path string, schema record.Schema) []record.Row {
	t.Helper()

	var raw []map[string]any
	LoadFixtureJSON(t, path, &raw)

	rows := make([]record.Row, 0, len(raw))
	for i, r := range raw {
		row, err := schema.CheckRow(record.Row(r))
		if err != nil {
			t.Fatalf("fixture %s row %d: %v", path, i, err)
		}
		rows = append(rows, row)
	}
	return rows
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}
