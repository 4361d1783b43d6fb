package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTTLService(t *testing.T) {
	svc, err := NewTTLService[string](DefaultConfig())
	if err != nil {
		t.Fatalf("NewTTLService() failed: %v", err)
	}

	ctx := context.Background()
	v, err := GetOrFetch(ctx, svc, "k", FetchFn[string](func(context.Context) (string, error) {
		return "value", nil
	}))
	if err != nil {
		t.Fatalf("GetOrFetch() failed: %v", err)
	}
	if v != "value" {
		t.Errorf("GetOrFetch() = %q, want value", v)
	}
	if cached, ok := svc.Get(ctx, "k"); !ok || cached != "value" {
		t.Errorf("expected fetched value to be cached, got %q, %v", cached, ok)
	}
}

func TestNewTTLService_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 0

	svc, err := NewTTLService[string](cfg)
	if err == nil {
		t.Fatal("expected error for zero TTL")
	}
	if svc != nil {
		t.Error("expected nil service on error")
	}
}

func TestNewMapService_NotFound(t *testing.T) {
	svc := NewMapService[int]()

	_, err := GetOrFetch(context.Background(), svc, "missing", func(context.Context) (int, error) {
		return 0, ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if svc.Len() != 0 {
		t.Errorf("expected no entries after a miss, got %d", svc.Len())
	}
}

func TestConfig_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EarlyRefresh = &EarlyRefreshConfig{
		MinAsyncRefreshTime: time.Second,
		MaxAsyncRefreshTime: 2 * time.Second,
		SyncRefreshTime:     3 * time.Second,
		RetryBaseDelay:      time.Millisecond,
	}

	back := convertFromInternal(cfg.toInternal())
	if back.Capacity != cfg.Capacity || back.TTL != cfg.TTL || back.NumShards != cfg.NumShards {
		t.Errorf("sizing lost in conversion: %+v", back)
	}
	if back.EarlyRefresh == nil || *back.EarlyRefresh != *cfg.EarlyRefresh {
		t.Errorf("early refresh lost in conversion: %+v", back.EarlyRefresh)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
