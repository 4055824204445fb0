package execution

// Context is the capability to schedule a unit of work. It abstracts
// over "run now in the caller's goroutine" versus "run later on some
// scheduler" so that stream observers can choose where their
// side-effects execute.
//
// The choice of Context is passed explicitly at each observation call;
// there is no ambient or global scheduling state in goflux.
type Context interface {
	// Schedule arranges for work to be executed. Implementations decide
	// whether execution is synchronous (inline) or asynchronous.
	Schedule(work func())
}

// ContextFunc adapts a plain function into a Context.
type ContextFunc func(work func())

// Schedule implements Context.
func (f ContextFunc) Schedule(work func()) {
	f(work)
}

// Immediate returns a Context that executes work synchronously in the
// caller's goroutine. Events observed on this context are delivered
// inline before the emitting call returns.
func Immediate() Context {
	return immediateContext{}
}

type immediateContext struct{}

func (immediateContext) Schedule(work func()) {
	work()
}

// Goroutine returns a Context that executes each unit of work on a
// fresh goroutine. It provides no ordering guarantees between units;
// use NewSerial when FIFO delivery is required.
func Goroutine() Context {
	return goroutineContext{}
}

type goroutineContext struct{}

func (goroutineContext) Schedule(work func()) {
	go work()
}
