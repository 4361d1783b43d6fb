package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-cached-table/cache"
	"github.com/goliatone/go-cached-table/config"
	"github.com/goliatone/go-cached-table/pkg/testsupport"
	"github.com/goliatone/go-cached-table/record"
	"github.com/goliatone/go-cached-table/store/bunstore"
	"github.com/goliatone/go-cached-table/store/memstore"
	"github.com/goliatone/go-cached-table/table"
)

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults(context.Background())
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer container.Close()

	if _, ok := container.Adapter().(*memstore.Store); !ok {
		t.Errorf("expected the in-memory store by default, got %T", container.Adapter())
	}
	if container.KeySerializer() == nil {
		t.Error("Container should have a non-nil key serializer")
	}
	if container.Metrics() != nil {
		t.Error("metrics are disabled by default")
	}

	cfg := container.Config()
	if cfg.Cache.Capacity != cache.DefaultConfig().Capacity {
		t.Errorf("Expected default capacity %d, got %d", cache.DefaultConfig().Capacity, cfg.Cache.Capacity)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Capacity = 0

	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Error("NewContainer() should fail with invalid config")
	}

	cfg = config.Default()
	cfg.Store = config.StoreConfig{Driver: bunstore.DriverSQLite3, DSN: filepath.Join(t.TempDir(), "missing", "dir", "db.sqlite")}
	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Error("NewContainer() should fail when the store cannot be opened")
	}
}

func TestContainer_TestingStrategySkipsStore(t *testing.T) {
	cfg := config.Default()
	cfg.CachingStrategy = string(table.StrategyTesting)
	cfg.Store = config.StoreConfig{Driver: bunstore.DriverPostgres, DSN: "postgres://unreachable.invalid/db"}

	container, err := NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	if container.Adapter() != nil {
		t.Errorf("testing strategy should not open a store, got %T", container.Adapter())
	}

	p, err := container.OpenTable(context.Background(), record.Schema{
		Table:      "t",
		PrimaryKey: []string{"id"},
		Fields:     []record.Field{{Name: "id", Kind: record.KindInteger}},
	})
	if err != nil {
		t.Fatalf("OpenTable() failed: %v", err)
	}
	if p.Strategy() != table.StrategyTesting {
		t.Errorf("expected testing strategy, got %s", p.Strategy())
	}
}

func TestContainer_WithAdapter(t *testing.T) {
	ctx := context.Background()
	adapter := testsupport.NewRecordingAdapter(memstore.New())

	container, err := NewContainerWithDefaults(ctx, WithAdapter(adapter))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	s, err := container.OpenSite(ctx, "https://school.moodledemo.net", "student")
	if err != nil {
		t.Fatalf("OpenSite() failed: %v", err)
	}
	if err := s.SetLocalConfig(ctx, "lang", "en"); err != nil {
		t.Fatalf("SetLocalConfig() failed: %v", err)
	}

	if got := len(adapter.CallsTo("CreateTable")); got != 2 {
		t.Errorf("expected both site tables to be created, got %d", got)
	}
	if got := len(adapter.CallsTo("InsertRow")); got != 1 {
		t.Errorf("expected one insert, got %d", got)
	}

	if err := container.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if got := len(adapter.CallsTo("Close")); got != 0 {
		t.Error("container must not close an adapter it does not own")
	}
}

func TestContainer_Metrics(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Metrics.Enabled = true

	container, err := NewContainer(ctx, cfg)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	if container.Metrics() == nil {
		t.Fatal("expected a metrics collector")
	}
	if container.TableOptions().Observer == nil {
		t.Error("tables should report to the metrics collector")
	}

	cfg.Metrics.Enabled = false
	container, err = NewContainer(ctx, cfg)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	if container.TableOptions().Observer != nil {
		t.Error("no observer expected when metrics are disabled")
	}
}

func TestContainer_TableOptions(t *testing.T) {
	cfg := config.Default()
	cfg.CachingStrategy = "eager"
	cfg.Cache.TTL = time.Minute

	container, err := NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	opts := container.TableOptions()
	if opts.Strategy != table.StrategyEager {
		t.Errorf("Expected eager strategy, got %s", opts.Strategy)
	}
	if opts.CacheConfig.TTL != time.Minute {
		t.Errorf("Expected TTL %v, got %v", time.Minute, opts.CacheConfig.TTL)
	}
	if opts.Adapter != container.Adapter() || opts.KeySerializer != container.KeySerializer() {
		t.Error("table options should share the container's singletons")
	}
	if opts.RowCache == nil {
		t.Fatal("Expected a shared row cache factory")
	}

	first, err := opts.RowCache(table.StrategyEager, record.Schema{Table: "a"})
	if err != nil {
		t.Fatalf("RowCache() failed: %v", err)
	}
	second, err := opts.RowCache(table.StrategyEager, record.Schema{Table: "b"})
	if err != nil {
		t.Fatalf("RowCache() failed: %v", err)
	}
	if first != second {
		t.Error("tables opened by one container should share a row cache")
	}
}

func TestContainer_CloseClearsRowCache(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.CachingStrategy = "eager"

	container, err := NewContainer(ctx, cfg)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	tbl, err := container.OpenTable(ctx, record.Schema{
		Table:      "settings",
		PrimaryKey: []string{"name"},
		Fields:     []record.Field{{Name: "name", Kind: record.KindString}},
	})
	if err != nil {
		t.Fatalf("OpenTable() failed: %v", err)
	}
	if err := tbl.Insert(ctx, record.Row{"name": "a"}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if got := container.RowCache().Len(); got != 1 {
		t.Errorf("Expected 1 cached row, got %d", got)
	}

	if err := container.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if got := container.RowCache().Len(); got != 0 {
		t.Errorf("Expected Close to drop cached rows, got %d", got)
	}
}
