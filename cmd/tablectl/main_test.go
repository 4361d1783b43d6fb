package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-cached-table/config"
	"github.com/goliatone/go-cached-table/pkg/di"
)

func newCommand(t *testing.T) (*command, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	container, err := di.NewContainerWithDefaults(ctx)
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	s, err := container.OpenSite(ctx, "https://school.moodledemo.net", "student")
	if err != nil {
		t.Fatalf("OpenSite() failed: %v", err)
	}

	out := &bytes.Buffer{}
	return &command{site: s, container: container, out: out}, out
}

func TestCommand_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	cmd, out := newCommand(t)

	steps := [][]string{
		{"set", "lang", "es"},
		{"set", "expirationTime", "200"},
		{"get", "lang"},
		{"get", "expirationTime"},
		{"list"},
		{"delete", "lang"},
	}
	for _, args := range steps {
		if err := cmd.run(ctx, args); err != nil {
			t.Fatalf("run(%v) failed: %v", args, err)
		}
	}

	want := strings.Join([]string{
		`"es"`,
		`200`,
		`{"name":"expirationTime","value":200}`,
		`{"name":"lang","value":"es"}`,
	}, "\n") + "\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}

	if err := cmd.run(ctx, []string{"get", "lang"}); err == nil {
		t.Error("expected error reading a deleted value")
	}
}

func TestCommand_Errors(t *testing.T) {
	ctx := context.Background()
	cmd, _ := newCommand(t)

	for _, args := range [][]string{
		nil,
		{"set", "only-name"},
		{"get"},
		{"delete"},
		{"explode"},
		{"serve"},
	} {
		if err := cmd.run(ctx, args); err == nil {
			t.Errorf("run(%v) should fail", args)
		}
	}
}

func TestCommand_Invalidate(t *testing.T) {
	cmd, _ := newCommand(t)
	if err := cmd.run(context.Background(), []string{"invalidate"}); err != nil {
		t.Errorf("invalidate failed: %v", err)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{in: "200", want: float64(200)},
		{in: "true", want: true},
		{in: `"quoted"`, want: "quoted"},
		{in: "plain text", want: "plain text"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "log"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	for _, format := range []string{"text", "json"} {
		logger := newLogger(config.LogConfig{Level: "info", Format: format}, f)
		logger.Info("hello")
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("expected a JSON record, got %s", data)
	}
}

func TestMainImpl_MemoryStore(t *testing.T) {
	out := &bytes.Buffer{}
	if err := mainImpl([]string{"set", "lang", "en"}, out); err != nil {
		t.Fatalf("mainImpl() failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("caching_strategy: nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := mainImpl([]string{"-config", path, "list"}, out); err == nil {
		t.Error("expected invalid configuration to fail")
	}
}

func TestNewLogger_Level(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "log"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	ctx := context.Background()
	for _, format := range []string{"text", "json"} {
		logger := newLogger(config.LogConfig{Level: "info+2", Format: format}, f)
		if logger.Enabled(ctx, slog.LevelInfo) {
			t.Errorf("%s: info should be below an info+2 threshold", format)
		}
		if !logger.Enabled(ctx, slog.LevelInfo+2) || !logger.Enabled(ctx, slog.LevelWarn) {
			t.Errorf("%s: expected info+2 and above to be enabled", format)
		}
	}
}
