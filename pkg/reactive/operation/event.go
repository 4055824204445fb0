package operation

// Kind discriminates the three event shapes an operation can emit.
type Kind int

const (
	// KindNext carries an intermediate or final value.
	KindNext Kind = iota
	// KindFailed is the failure terminal; Err holds the cause.
	KindFailed
	// KindSucceeded is the success terminal.
	KindSucceeded
)

// Event is one observer-visible occurrence in an operation's lifetime:
// zero or more next events followed by exactly one terminal.
type Event[T any] struct {
	Kind  Kind
	Value T     // set when Kind is KindNext
	Err   error // set when Kind is KindFailed
}

// IsTerminal reports whether the event ends the operation's stream.
func (e Event[T]) IsTerminal() bool {
	return e.Kind == KindFailed || e.Kind == KindSucceeded
}

func nextEvent[T any](v T) Event[T] {
	return Event[T]{Kind: KindNext, Value: v}
}

func failedEvent[T any](err error) Event[T] {
	return Event[T]{Kind: KindFailed, Err: err}
}

func succeededEvent[T any]() Event[T] {
	return Event[T]{Kind: KindSucceeded}
}
