package cacheinfra

import (
	"context"
	"errors"
	"strings"

	"github.com/viccon/sturdyc"
)

// SturdycService is a TTL bound, sharded cache backed by a sturdyc client.
// Entries expire on their own, which gives lazily populated tables a time
// based invalidation on top of the explicit write-through updates.
type SturdycService[V any] struct {
	client *sturdyc.Client[V]
}

// NewSturdycService validates cfg and builds a sturdyc client from it.
func NewSturdycService[V any](cfg Config) (*SturdycService[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[V](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycService[V]{client: client}, nil
}

// Get returns the cached value for key.
func (s *SturdycService[V]) Get(_ context.Context, key string) (V, bool) {
	return s.client.Get(key)
}

// Set stores value under key.
func (s *SturdycService[V]) Set(_ context.Context, key string, value V) error {
	s.client.Set(key, value)
	return nil
}

// GetOrFetch returns the cached value or calls fetchFn and caches its result.
// Concurrent misses for the same key share a single fetch. A fetch reporting
// ErrNotFound is surfaced as ErrNotFound.
func (s *SturdycService[V]) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (V, error)) (V, error) {
	value, err := s.client.GetOrFetch(ctx, key, func(ctx context.Context) (V, error) {
		v, err := fetchFn(ctx)
		if errors.Is(err, ErrNotFound) {
			return v, sturdyc.ErrNotFound
		}
		return v, err
	})
	if errors.Is(err, sturdyc.ErrNotFound) || errors.Is(err, sturdyc.ErrMissingRecord) {
		var zero V
		return zero, ErrNotFound
	}
	return value, err
}

// Delete removes a single entry.
func (s *SturdycService[V]) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix.
func (s *SturdycService[V]) DeleteByPrefix(_ context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Range calls fn for every live entry until fn returns false.
func (s *SturdycService[V]) Range(fn func(key string, value V) bool) {
	for _, key := range s.client.ScanKeys() {
		value, ok := s.client.Get(key)
		if !ok {
			continue
		}
		if !fn(key, value) {
			return
		}
	}
}

// Keys returns the keys currently held.
func (s *SturdycService[V]) Keys() []string {
	return s.client.ScanKeys()
}

// Len returns the number of entries held, expired ones included until swept.
func (s *SturdycService[V]) Len() int {
	return s.client.Size()
}

// Clear drops every entry.
func (s *SturdycService[V]) Clear(_ context.Context) error {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
	return nil
}
