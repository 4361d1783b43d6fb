package cacheinfra

import (
	"context"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// MapService is an unbounded cache without expiry. Tables that mirror their
// whole contents in memory use it since an evicted row would look deleted.
type MapService[V any] struct {
	entries *xsync.MapOf[string, V]
}

// NewMapService returns an empty map backed cache.
func NewMapService[V any]() *MapService[V] {
	return &MapService[V]{entries: xsync.NewMapOf[string, V]()}
}

func (s *MapService[V]) Get(_ context.Context, key string) (V, bool) {
	return s.entries.Load(key)
}

func (s *MapService[V]) Set(_ context.Context, key string, value V) error {
	s.entries.Store(key, value)
	return nil
}

// GetOrFetch calls fetchFn on a miss and stores what it returns. Failed
// fetches, ErrNotFound included, leave the cache untouched.
func (s *MapService[V]) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (V, error)) (V, error) {
	if v, ok := s.entries.Load(key); ok {
		return v, nil
	}
	v, err := fetchFn(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	actual, _ := s.entries.LoadOrStore(key, v)
	return actual, nil
}

func (s *MapService[V]) Delete(_ context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}

func (s *MapService[V]) DeleteByPrefix(_ context.Context, prefix string) error {
	s.entries.Range(func(key string, _ V) bool {
		if strings.HasPrefix(key, prefix) {
			s.entries.Delete(key)
		}
		return true
	})
	return nil
}

func (s *MapService[V]) Range(fn func(key string, value V) bool) {
	s.entries.Range(fn)
}

func (s *MapService[V]) Keys() []string {
	keys := make([]string, 0, s.entries.Size())
	s.entries.Range(func(key string, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (s *MapService[V]) Len() int {
	return s.entries.Size()
}

func (s *MapService[V]) Clear(_ context.Context) error {
	s.entries.Clear()
	return nil
}
