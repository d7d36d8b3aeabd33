package circuitbreaker

import "errors"

var (
	// ErrCircuitOpen is returned while the breaker rejects calls so the upstream can recover.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrTooManyRequests is returned when the half-open probe budget is exhausted.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)
