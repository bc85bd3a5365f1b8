// Package numeric holds the error kinds shared by the numeric core. The
// algorithms themselves never retry or swallow these; callers decide.
package numeric

import "errors"

var (
	// ErrInsufficientData: not enough samples for the requested
	// computation (k > n, or a matrix thinner than the projection floor).
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNumericFailure: a computation produced a non-finite result or a
	// decomposition failed to converge.
	ErrNumericFailure = errors.New("numeric failure")

	// ErrCancelled: cooperative cancellation observed between iterations.
	ErrCancelled = errors.New("cancelled")
)
