package cacheinfra

import "errors"

// ErrNotFound is returned by a fetch function, and by GetOrFetch, when the
// requested key has no value in the source of truth.
var ErrNotFound = errors.New("cache: record not found")
