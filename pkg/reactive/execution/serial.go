package execution

import (
	"sync"
)

// Serial is a Context backed by a single worker goroutine. Work
// scheduled on it executes one unit at a time in FIFO order, which
// gives observers the in-emission-order delivery guarantee without
// blocking producers.
//
// A Serial context must be closed when no longer needed to release its
// worker goroutine.
type Serial struct {
	mu        sync.Mutex
	queue     []func()
	wake      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	closed    bool
}

// NewSerial creates a Serial context and starts its worker.
func NewSerial() *Serial {
	s := &Serial{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

// Schedule implements Context. Work scheduled after Close is dropped.
func (s *Serial) Schedule(work func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, work)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close initiates shutdown of the worker. Work already queued is
// executed before the worker exits. The returned channel closes once
// the worker has drained and stopped. Close is idempotent.
func (s *Serial) Close() <-chan struct{} {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		select {
		case s.wake <- struct{}{}:
		default:
		}
	})
	return s.stopped
}

// Pending returns the number of queued units of work.
func (s *Serial) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// run is the main loop for the worker.
func (s *Serial) run() {
	defer close(s.stopped)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			if s.closed {
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
			<-s.wake
			continue
		}
		work := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		work()
	}
}
