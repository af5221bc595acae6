package kdtree

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongDimension is returned when a point's length differs from the tree's dimensionality.
	ErrWrongDimension = errors.New("wrong dimension")

	// ErrNonFiniteCoordinate is returned when a coordinate is NaN or ±Inf.
	ErrNonFiniteCoordinate = errors.New("non-finite coordinate")

	// ErrZeroCapacity is returned by Add on a tree built with leaf capacity 0.
	ErrZeroCapacity = errors.New("zero capacity")

	// ErrTreeModified is reported by an iterator whose tree was mutated after
	// the iterator was created.
	ErrTreeModified = errors.New("tree modified during iteration")

	// ErrCorruptSnapshot is returned when a snapshot violates the tree invariants.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// DimensionError reports a point/tree dimensionality mismatch.
//
// It matches ErrWrongDimension with errors.Is.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%v: expected %d, got %d", ErrWrongDimension, e.Expected, e.Actual)
}

func (e *DimensionError) Unwrap() error { return ErrWrongDimension }

// CoordinateError reports the first non-finite coordinate of a point.
//
// It matches ErrNonFiniteCoordinate with errors.Is.
type CoordinateError struct {
	Index int
	Value float64
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%v: coordinate %d is %v", ErrNonFiniteCoordinate, e.Index, e.Value)
}

func (e *CoordinateError) Unwrap() error { return ErrNonFiniteCoordinate }

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptSnapshot, fmt.Sprintf(format, args...))
}
