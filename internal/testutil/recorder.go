package testutil

import "sync"

// Recorder collects values delivered to a stream observer so tests can
// assert on the exact sequence received. Safe for concurrent appends
// from scheduler-backed execution contexts.
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Observe returns a callback suitable for Stream.Observe.
func (r *Recorder[T]) Observe() func(T) {
	return func(v T) {
		r.mu.Lock()
		r.values = append(r.values, v)
		r.mu.Unlock()
	}
}

// Append records a value directly.
func (r *Recorder[T]) Append(v T) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

// Values returns a copy of everything recorded so far.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of recorded values.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}
