package errors

import "errors"

// Common error types used across the goflux library

var (
	// ErrDisposed indicates that an operation was attempted on a disposed resource
	ErrDisposed = errors.New("resource is disposed")

	// ErrCancelled indicates that an observation was cancelled before a terminal event arrived
	ErrCancelled = errors.New("observation cancelled")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// IsRetryable returns true if the error indicates a condition that might
// be resolved by retrying the operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCancellation returns true if the error indicates an observation that
// was cancelled or disposed rather than a producer failure
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, ErrDisposed)
}
