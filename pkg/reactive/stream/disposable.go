package stream

import (
	"sync"
	"sync/atomic"
)

// Disposable is a one-shot cancellation handle for a subscription or
// an in-flight execution. Disposing it exactly once releases whatever
// resources the registration holds; further calls are no-ops. All
// implementations in this package are safe for concurrent use.
type Disposable interface {
	// Dispose cancels the subscription. Idempotent: concurrent and
	// repeated calls collapse to a single effect.
	Dispose()

	// IsDisposed reports whether Dispose has been called.
	IsDisposed() bool
}

// NewDisposable creates a Disposable that runs action the first time
// Dispose is called. A nil action is allowed.
func NewDisposable(action func()) Disposable {
	return &actionDisposable{action: action}
}

// Nop returns a Disposable that releases nothing.
func Nop() Disposable {
	return &actionDisposable{}
}

type actionDisposable struct {
	disposed atomic.Bool
	action   func()
}

func (d *actionDisposable) Dispose() {
	if d.disposed.CompareAndSwap(false, true) {
		if d.action != nil {
			d.action()
		}
	}
}

func (d *actionDisposable) IsDisposed() bool {
	return d.disposed.Load()
}

// Composite groups several disposables under a single handle.
// Disposing the composite disposes every child; children added after
// disposal are disposed immediately.
type Composite struct {
	mu       sync.Mutex
	disposed bool
	children []Disposable
}

// NewComposite creates a Composite holding the given disposables.
func NewComposite(children ...Disposable) *Composite {
	c := &Composite{}
	c.children = append(c.children, children...)
	return c
}

// Add attaches d to the composite.
func (c *Composite) Add(d Disposable) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		d.Dispose()
		return
	}
	c.children = append(c.children, d)
	c.mu.Unlock()
}

// Dispose implements Disposable.
func (c *Composite) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	children := c.children
	c.children = nil
	c.mu.Unlock()

	for _, d := range children {
		d.Dispose()
	}
}

// IsDisposed implements Disposable.
func (c *Composite) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// SerialDisposable holds at most one inner disposable. Setting a new
// one disposes the previously held disposable; disposing the holder
// disposes the current inner disposable and every one set afterwards.
type SerialDisposable struct {
	mu       sync.Mutex
	disposed bool
	current  Disposable
}

// NewSerialDisposable creates an empty SerialDisposable.
func NewSerialDisposable() *SerialDisposable {
	return &SerialDisposable{}
}

// Set replaces the held disposable with d, disposing the previous one.
// A nil d simply releases the previous disposable.
func (s *SerialDisposable) Set(d Disposable) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		if d != nil {
			d.Dispose()
		}
		return
	}
	old := s.current
	s.current = d
	s.mu.Unlock()

	if old != nil {
		old.Dispose()
	}
}

// Dispose implements Disposable.
func (s *SerialDisposable) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	current := s.current
	s.current = nil
	s.mu.Unlock()

	if current != nil {
		current.Dispose()
	}
}

// IsDisposed implements Disposable.
func (s *SerialDisposable) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
