// Package observable provides the single-value hot stream: an
// Observable buffers the current value, emits one event per write, and
// replays the latest value to each new observer.
package observable
