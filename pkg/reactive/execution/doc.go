/*
Package execution provides execution contexts for goflux streams.

An execution context decides where observer callbacks run. Every
observation call in goflux takes a Context explicitly; the engine never
consults global scheduling state.

Three implementations are provided:

	// Inline, synchronous delivery in the emitting goroutine.
	ctx := execution.Immediate()

	// Each event delivered on its own goroutine (unordered).
	ctx := execution.Goroutine()

	// FIFO delivery on a dedicated worker goroutine.
	serial := execution.NewSerial()
	defer func() { <-serial.Close() }()

Custom schedulers (event loops, worker pools) can participate by
implementing the single-method Context interface, or by wrapping a
function with ContextFunc:

	ctx := execution.ContextFunc(func(work func()) {
		myLoop.Post(work)
	})
*/
package execution
