package domain

import "errors"

// Sentinel errors of the decision core. Callers are expected to test for
// these with errors.Is; services add context with pkg/errors on top.
var (
	// ErrInvalidConfiguration marks a misconfigured factor set or
	// threshold pair. Not recoverable without caller correction.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput marks an out-of-range factor value or failure rate.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData is returned when a failure rate is requested
	// from a completely empty ledger.
	ErrInsufficientData = errors.New("insufficient data")
)
