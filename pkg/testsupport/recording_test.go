package testsupport

import (
	"context"
	"testing"

	"github.com/goliatone/go-cached-table/record"
	"github.com/goliatone/go-cached-table/store/memstore"
	"github.com/goliatone/go-cached-table/table"
)

var settingsSchema = record.Schema{
	Table:      "settings",
	PrimaryKey: []string{"name"},
	Fields: []record.Field{
		{Name: "name", Kind: record.KindString},
		{Name: "value", Kind: record.KindAny, Nullable: true},
	},
}

func TestRecordingAdapter(t *testing.T) {
	ctx := context.Background()
	adapter := NewRecordingAdapter(memstore.New())

	if err := adapter.CreateTable(ctx, settingsSchema); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	if err := adapter.InsertRow(ctx, "settings", record.Row{"name": "a", "value": 1}); err != nil {
		t.Fatalf("InsertRow() failed: %v", err)
	}
	if _, err := adapter.UpdateRows(ctx, "settings", record.Row{"value": 2}, nil); err != nil {
		t.Fatalf("UpdateRows() failed: %v", err)
	}

	if adapter.Count() != 3 {
		t.Errorf("expected 3 calls, got %d", adapter.Count())
	}
	if !adapter.CalledWith("InsertRow", "settings", record.Row{"name": "a", "value": 1}) {
		t.Errorf("expected InsertRow to be recorded, got %+v", adapter.Calls())
	}
	if !adapter.CalledWith("UpdateRows", "settings", record.Row{"value": 2}, record.Filter(nil)) {
		t.Errorf("expected UpdateRows with nil filter to be recorded, got %+v", adapter.Calls())
	}

	adapter.Reset()
	if len(adapter.Calls()) != 0 {
		t.Error("expected no calls after Reset")
	}
}

func TestRecordingAdapter_NilBase(t *testing.T) {
	adapter := NewRecordingAdapter(nil)

	rows, err := adapter.SelectRows(context.Background(), "settings", nil)
	if err != nil || rows != nil {
		t.Errorf("expected empty result from nil base, got %v, %v", rows, err)
	}
	if len(adapter.CallsTo("SelectRows")) != 1 {
		t.Error("expected SelectRows to be recorded")
	}
}

func TestRecordingTable(t *testing.T) {
	ctx := context.Background()
	base, err := table.Open(ctx, settingsSchema, table.Options{Strategy: table.StrategyTesting})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	tbl := NewRecordingTable(base)

	if err := tbl.Insert(ctx, record.Row{"name": "theme", "value": "dark"}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if err := tbl.DeleteByPrimaryKey(ctx, record.Key{"name": "theme"}); err != nil {
		t.Fatalf("DeleteByPrimaryKey() failed: %v", err)
	}
	if _, err := tbl.GetOneByPrimaryKey(ctx, record.Key{"name": "theme"}); !record.IsRecordNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}

	if !tbl.CalledWith("Insert", record.Row{"name": "theme", "value": "dark"}) {
		t.Errorf("expected Insert to be recorded, got %+v", tbl.Calls())
	}
	if !tbl.CalledWith("DeleteByPrimaryKey", record.Key{"name": "theme"}) {
		t.Errorf("expected DeleteByPrimaryKey to be recorded, got %+v", tbl.Calls())
	}
	if got := len(tbl.Calls()); got != 3 {
		t.Errorf("expected 3 calls, got %d", got)
	}
	if tbl.Unwrap() != table.Table(base) {
		t.Error("Unwrap should return the decorated table")
	}
	if tbl.Strategy() != table.StrategyTesting {
		t.Errorf("expected testing strategy, got %s", tbl.Strategy())
	}
}
