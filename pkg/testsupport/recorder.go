package testsupport

import (
	"reflect"
	"sync"
)

// Call is one recorded method invocation.
type Call struct {
	Method string
	Args   []any
}

// Recorder keeps the calls made through a recording decorator.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) record(method string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: method, Args: args})
}

// Calls returns a copy of every recorded call in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo returns the recorded calls to method.
func (r *Recorder) CallsTo(method string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// CalledWith reports whether method was called with exactly args. Arguments
// are compared with reflect.DeepEqual, so an untyped nil filter only matches a
// nil record.Filter when written as record.Filter(nil).
func (r *Recorder) CalledWith(method string, args ...any) bool {
	for _, c := range r.CallsTo(method) {
		if reflect.DeepEqual(c.Args, args) {
			return true
		}
	}
	return false
}

// Count returns how many calls were recorded.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
