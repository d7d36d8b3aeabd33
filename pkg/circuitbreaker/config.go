package circuitbreaker

import "time"

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name identifies the circuit breaker in logs and metrics.
	Name string

	// Enabled determines whether the circuit breaker is active.
	// When false, New returns nil and Execute passes through directly.
	Enabled bool

	// MaxRequests is the number of probe requests allowed while half-open.
	// Zero means one.
	MaxRequests uint

	// Interval clears the closed-state counts periodically. Zero never clears.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint

	// IsFailure classifies errors returned by the wrapped call. Errors it
	// rejects are returned to the caller without counting against the
	// breaker. Nil counts every error.
	IsFailure func(err error) bool

	// OnStateChange is called on every transition.
	OnStateChange func(name string, from, to State)
}
