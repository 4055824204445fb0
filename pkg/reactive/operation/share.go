package operation

import (
	"sync"

	"github.com/vnykmshr/goflux/pkg/reactive/execution"
	"github.com/vnykmshr/goflux/pkg/reactive/stream"
)

// Share converts the cold operation into a hot one backed by a single
// run. The first Observe starts the underlying producer exactly once;
// every observer attaches to that run instead of triggering its own.
// The hub buffers the latest next value and the terminal event: a new
// observer first receives the buffered next (if any), then the terminal
// if the run already finished, then live events.
//
// The shared run is never cancelled by observers; disposing an
// observation only detaches that observer.
func Share[T any](op Operation[T]) Operation[T] {
	hub := &sharedHub[T]{observers: make(map[uint64]func(Event[T]))}
	var once sync.Once
	return FromObserve(func(ec execution.Context, onEvent func(Event[T])) stream.Disposable {
		once.Do(func() {
			// The internal observation runs on the immediate context:
			// events are broadcast on the producer's goroutine and each
			// external observer reschedules onto its own context.
			op.observe(execution.Immediate(), hub.broadcast)
		})
		return hub.attach(ec, onEvent)
	})
}

// sharedHub fans one run's events out to many observers, buffering the
// latest next value and the terminal event for replay.
type sharedHub[T any] struct {
	mu        sync.Mutex
	observers map[uint64]func(Event[T])
	nextID    uint64
	lastNext  Event[T]
	hasNext   bool
	terminal  Event[T]
	hasTerm   bool
}

func (h *sharedHub[T]) broadcast(ev Event[T]) {
	h.mu.Lock()
	if h.hasTerm {
		h.mu.Unlock()
		return
	}
	if ev.Kind == KindNext {
		h.lastNext, h.hasNext = ev, true
	} else {
		h.terminal, h.hasTerm = ev, true
	}
	snapshot := make([]func(Event[T]), 0, len(h.observers))
	for _, deliver := range h.observers {
		snapshot = append(snapshot, deliver)
	}
	h.mu.Unlock()

	for _, deliver := range snapshot {
		deliver(ev)
	}
}

// attach registers one observer, expressed as a cold single-observer
// stream so delivery inherits the gated, context-scheduled dispatch of
// the stream layer. Replay happens before the observer joins the live
// set, mirroring ActiveStream registration.
func (h *sharedHub[T]) attach(ec execution.Context, onEvent func(Event[T])) stream.Disposable {
	return stream.New(func(next func(Event[T])) stream.Disposable {
		h.mu.Lock()
		var replay []Event[T]
		if h.hasNext {
			replay = append(replay, h.lastNext)
		}
		finished := h.hasTerm
		if finished {
			replay = append(replay, h.terminal)
		}
		h.mu.Unlock()

		for _, ev := range replay {
			next(ev)
		}
		if finished {
			return nil
		}

		h.mu.Lock()
		if h.hasTerm {
			// The run finished while the replay was delivered.
			terminal := h.terminal
			h.mu.Unlock()
			next(terminal)
			return nil
		}
		id := h.nextID
		h.nextID++
		h.observers[id] = next
		h.mu.Unlock()

		return stream.NewDisposable(func() {
			h.mu.Lock()
			delete(h.observers, id)
			h.mu.Unlock()
		})
	}).Observe(ec, onEvent)
}
