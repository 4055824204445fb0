package operation

import (
	"sync"

	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// Map returns an operation whose next values are f applied to the next
// values of op. Terminal events pass through untouched, so the mapped
// operation fails and succeeds exactly when op does.
func Map[T, U any](op Operation[T], f func(T) U) Operation[U] {
	return FromObserve(func(ec execution.Context, onEvent func(Event[U])) stream.Disposable {
		return op.observe(ec, func(ev Event[T]) {
			switch ev.Kind {
			case KindNext:
				onEvent(nextEvent(f(ev.Value)))
			case KindFailed:
				onEvent(failedEvent[U](ev.Err))
			case KindSucceeded:
				onEvent(succeededEvent[U]())
			}
		})
	})
}

// Filter returns an operation that drops next values for which
// predicate returns false. Terminal events always pass.
func Filter[T any](op Operation[T], predicate func(T) bool) Operation[T] {
	return FromObserve(func(ec execution.Context, onEvent func(Event[T])) stream.Disposable {
		return op.observe(ec, func(ev Event[T]) {
			if ev.Kind == KindNext && !predicate(ev.Value) {
				return
			}
			onEvent(ev)
		})
	})
}

// FlatMapError returns an operation that, when op fails, continues with
// the operation f builds from the failure instead of propagating it.
// Next values and success of op pass through unchanged; events of the
// substituted operation are forwarded as the stream's continuation, so
// a failure of the substitute does reach the observer.
func FlatMapError[T any](op Operation[T], f func(error) Operation[T]) Operation[T] {
	return FromObserve(func(ec execution.Context, onEvent func(Event[T])) stream.Disposable {
		fallback := stream.NewSerialDisposable()
		outer := op.observe(ec, func(ev Event[T]) {
			if ev.Kind == KindFailed {
				fallback.Set(f(ev.Err).observe(ec, onEvent))
				return
			}
			onEvent(ev)
		})
		return stream.NewComposite(outer, fallback)
	})
}

// Strategy selects how FlatMap runs the inner operations spawned by
// upstream next values.
type Strategy int

const (
	// Latest cancels the previous inner run before starting the next
	// one; only the most recent inner operation's events are forwarded.
	Latest Strategy = iota
	// Merge runs all inner operations concurrently and forwards all of
	// their events; the composed operation succeeds only after the
	// outer operation and every inner one have succeeded.
	Merge
	// Concat queues inner operations and runs them strictly one at a
	// time in arrival order.
	Concat
)

// FlatMap returns an operation that starts the inner operation f(v) for
// each next value v of op, coordinated by the given strategy. Inner
// next values become the composed operation's next values. A failure of
// op or of any live inner run fails the composed operation; success is
// emitted once op and the inner runs the strategy keeps have all
// succeeded.
func FlatMap[T, U any](op Operation[T], strategy Strategy, f func(T) Operation[U]) Operation[U] {
	return FromObserve(func(ec execution.Context, onEvent func(Event[U])) stream.Disposable {
		fm := &flatMapRun[T, U]{
			strategy: strategy,
			ec:       ec,
			onEvent:  onEvent,
			f:        f,
			latest:   stream.NewSerialDisposable(),
			inners:   stream.NewComposite(),
		}
		fm.setOuter(op.observe(ec, fm.outerEvent))
		return fm
	})
}

// flatMapRun coordinates one observation of a FlatMap composition. The
// mutex guards bookkeeping only; onEvent and inner Observe calls happen
// outside it, because on an immediate context either may re-enter the
// coordinator (an observer disposing the composition from its callback,
// or an inner operation terminating synchronously).
type flatMapRun[T, U any] struct {
	strategy Strategy
	ec       execution.Context
	onEvent  func(Event[U])
	f        func(T) Operation[U]

	latest *stream.SerialDisposable
	inners *stream.Composite

	mu         sync.Mutex
	terminated bool
	outerDone  bool
	running    int
	pending    []Operation[U]
	outer      stream.Disposable
}

func (fm *flatMapRun[T, U]) setOuter(outer stream.Disposable) {
	fm.mu.Lock()
	if fm.terminated {
		fm.mu.Unlock()
		outer.Dispose()
		return
	}
	fm.outer = outer
	fm.mu.Unlock()
}

func (fm *flatMapRun[T, U]) outerEvent(ev Event[T]) {
	switch ev.Kind {
	case KindNext:
		inner := fm.f(ev.Value)
		fm.mu.Lock()
		if fm.terminated {
			fm.mu.Unlock()
			return
		}
		switch fm.strategy {
		case Latest:
			fm.running = 1
			fm.mu.Unlock()
			fm.latest.Set(nil) // cancel the superseded run first
			fm.latest.Set(inner.observe(fm.ec, fm.innerEvent))
		case Merge:
			fm.running++
			fm.mu.Unlock()
			fm.inners.Add(inner.observe(fm.ec, fm.innerEvent))
		case Concat:
			if fm.running > 0 {
				fm.pending = append(fm.pending, inner)
				fm.mu.Unlock()
				return
			}
			fm.running = 1
			fm.mu.Unlock()
			fm.inners.Add(inner.observe(fm.ec, fm.innerEvent))
		}
	case KindFailed:
		fm.fail(ev.Err)
	case KindSucceeded:
		fm.mu.Lock()
		fm.outerDone = true
		done := !fm.terminated && fm.running == 0 && len(fm.pending) == 0
		if done {
			fm.terminated = true
		}
		fm.mu.Unlock()
		if done {
			fm.onEvent(succeededEvent[U]())
		}
	}
}

func (fm *flatMapRun[T, U]) innerEvent(ev Event[U]) {
	switch ev.Kind {
	case KindNext:
		fm.mu.Lock()
		terminated := fm.terminated
		fm.mu.Unlock()
		if !terminated {
			fm.onEvent(ev)
		}
	case KindFailed:
		fm.fail(ev.Err)
	case KindSucceeded:
		fm.mu.Lock()
		if fm.terminated {
			fm.mu.Unlock()
			return
		}
		fm.running--
		var next Operation[U]
		start := false
		if fm.strategy == Concat && len(fm.pending) > 0 {
			next, fm.pending = fm.pending[0], fm.pending[1:]
			fm.running = 1
			start = true
		}
		done := !start && fm.outerDone && fm.running == 0 && len(fm.pending) == 0
		if done {
			fm.terminated = true
		}
		fm.mu.Unlock()

		if start {
			fm.inners.Add(next.observe(fm.ec, fm.innerEvent))
			return
		}
		if done {
			fm.onEvent(succeededEvent[U]())
		}
	}
}

func (fm *flatMapRun[T, U]) fail(err error) {
	fm.mu.Lock()
	if fm.terminated {
		fm.mu.Unlock()
		return
	}
	fm.terminated = true
	fm.pending = nil
	outer := fm.outer
	fm.mu.Unlock()

	fm.onEvent(failedEvent[U](err))
	fm.latest.Dispose()
	fm.inners.Dispose()
	if outer != nil {
		outer.Dispose()
	}
}

// Dispose implements Disposable: it cancels the outer run and every
// live inner run.
func (fm *flatMapRun[T, U]) Dispose() {
	fm.mu.Lock()
	if fm.terminated {
		fm.mu.Unlock()
		return
	}
	fm.terminated = true
	fm.pending = nil
	outer := fm.outer
	fm.mu.Unlock()

	fm.latest.Dispose()
	fm.inners.Dispose()
	if outer != nil {
		outer.Dispose()
	}
}

// IsDisposed implements Disposable.
func (fm *flatMapRun[T, U]) IsDisposed() bool {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.terminated
}
