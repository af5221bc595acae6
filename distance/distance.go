package distance

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Float is the set of scalar types a coordinate may be built from.
type Float interface {
	~float32 | ~float64
}

// Func computes the distance between two coordinates of equal length.
// Implementations must be pure; the tree may call them many times per query.
type Func[A Float] func(a, b []A) A

// SquaredEuclidean returns the sum of squared per-dimension differences.
// It orders points exactly like Euclidean but skips the square root.
// Assumes a and b have the same length (caller's responsibility).
func SquaredEuclidean[A Float](a, b []A) A {
	var sum A
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Euclidean returns the L2 distance between a and b.
func Euclidean[A Float](a, b []A) A {
	return A(math.Sqrt(float64(SquaredEuclidean(a, b))))
}

// Manhattan returns the L1 (taxicab) distance between a and b.
func Manhattan[A Float](a, b []A) A {
	var sum A
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

// Chebyshev returns the L∞ distance (largest per-dimension difference).
func Chebyshev[A Float](a, b []A) A {
	var m A
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > m {
			m = d
		}
	}
	return m
}

// Metric names a built-in distance function.
type Metric int

const (
	MetricSquaredEuclidean Metric = iota
	MetricEuclidean
	MetricManhattan
	MetricChebyshev
)

func (m Metric) String() string {
	switch m {
	case MetricSquaredEuclidean:
		return "SquaredEuclidean"
	case MetricEuclidean:
		return "Euclidean"
	case MetricManhattan:
		return "Manhattan"
	case MetricChebyshev:
		return "Chebyshev"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Provider returns the distance function for the given metric.
func Provider[A Float](m Metric) (Func[A], error) {
	switch m {
	case MetricSquaredEuclidean:
		return SquaredEuclidean[A], nil
	case MetricEuclidean:
		return Euclidean[A], nil
	case MetricManhattan:
		return Manhattan[A], nil
	case MetricChebyshev:
		return Chebyshev[A], nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// Counter wraps a distance function and counts its invocations.
// The count is the cost model used to compare query strategies.
// It is safe for concurrent use.
type Counter[A Float] struct {
	fn    Func[A]
	calls atomic.Int64
}

// NewCounter returns a Counter around fn.
func NewCounter[A Float](fn Func[A]) *Counter[A] {
	return &Counter[A]{fn: fn}
}

// Func returns the counting distance function.
func (c *Counter[A]) Func() Func[A] {
	return func(a, b []A) A {
		c.calls.Add(1)
		return c.fn(a, b)
	}
}

// Calls returns the number of invocations so far.
func (c *Counter[A]) Calls() int64 {
	return c.calls.Load()
}

// Reset zeroes the counter and returns the previous value.
func (c *Counter[A]) Reset() int64 {
	return c.calls.Swap(0)
}
