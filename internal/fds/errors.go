package fds

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange indicates a checked access outside -2..L+1.
	ErrIndexOutOfRange = errors.New("fds: field index out of range")

	// ErrStaleDerived indicates derived material parameters were used before
	// CalculateDerivedParameters was called after a material or geometry change.
	ErrStaleDerived = errors.New("fds: derived parameters are stale (call CalculateDerivedParameters)")

	// ErrInvalidPosition indicates a fractional grid position outside the interior.
	ErrInvalidPosition = errors.New("fds: fractional position outside the domain")
)

// IndexError reports a checked field access outside the halo range.
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: index %d not in [-2, %d]", ErrIndexOutOfRange, e.Index, e.Length+1)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}
