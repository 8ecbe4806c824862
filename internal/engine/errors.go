package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord indicates a parameter record without exactly three coefficients.
	ErrMalformedRecord = errors.New("engine: parameter record must hold alpha, beta and gamma")

	// ErrUnknownExecutor indicates an executor name missing from the registry.
	ErrUnknownExecutor = errors.New("engine: unknown executor")

	// ErrDimensionMismatch indicates columns of differing length.
	ErrDimensionMismatch = errors.New("engine: output columns differ in length")
)

// RecordError wraps a construction error with the offending record.
type RecordError struct {
	Index   int
	Got     int
	Wrapped error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d has %d coefficients: %v", e.Index, e.Got, e.Wrapped)
}

func (e *RecordError) Unwrap() error {
	return e.Wrapped
}
