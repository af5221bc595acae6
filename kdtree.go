package kdtree

import (
	"math"
	"slices"
	"time"

	"github.com/hupe1980/kdtree/distance"
	"github.com/hupe1980/kdtree/internal/pool"
)

// Float is the set of coordinate scalar types.
type Float = distance.Float

// KdTree is an in-memory k-d tree mapping D-dimensional points to payloads.
//
// Leaves hold up to Capacity points; an overflowing leaf is split at the
// midpoint of its widest dimension. Splits are local and permanent, and
// nothing is ever rebalanced.
//
// A KdTree is not safe for concurrent mutation. Any number of goroutines may
// query it at once as long as no Add or Remove runs at the same time.
type KdTree[A Float, T comparable] struct {
	root       *node[A, T]
	dimensions int
	capacity   int
	// generation changes on every successful mutation so live iterators can
	// detect that their view is stale.
	generation uint64
	opts       options
	searchPool *pool.Pool[*searchContext[A, T]]
}

// New creates an empty tree for points of the given dimensionality with
// DefaultCapacity points per leaf.
func New[A Float, T comparable](dimensions int, opts ...Option) *KdTree[A, T] {
	return NewWithCapacity[A, T](dimensions, DefaultCapacity, opts...)
}

// NewWithCapacity creates an empty tree whose leaves hold up to capacity points.
//
// A capacity of 0 (or less) yields a tree that rejects every Add with
// ErrZeroCapacity and answers every query with an empty result.
func NewWithCapacity[A Float, T comparable](dimensions, capacity int, opts ...Option) *KdTree[A, T] {
	o := applyOptions(opts)
	o.logger = o.logger.WithDimension(dimensions).WithCapacity(capacity)
	return newTree[A, T](newNode[A, T](dimensions), dimensions, capacity, o)
}

func newTree[A Float, T comparable](root *node[A, T], dimensions, capacity int, o options) *KdTree[A, T] {
	return &KdTree[A, T]{
		root:       root,
		dimensions: dimensions,
		capacity:   capacity,
		opts:       o,
		searchPool: newSearchPool[A, T](dimensions),
	}
}

// Size returns the number of stored (point, payload) records.
func (t *KdTree[A, T]) Size() int {
	return t.root.size
}

// Dimensions returns the dimensionality every point must have.
func (t *KdTree[A, T]) Dimensions() int {
	return t.dimensions
}

// Capacity returns the leaf capacity.
func (t *KdTree[A, T]) Capacity() int {
	return t.capacity
}

// Add stores payload at point. The point is copied.
//
// Errors are checked in order: ErrZeroCapacity, ErrWrongDimension,
// ErrNonFiniteCoordinate. On error the tree is unchanged.
func (t *KdTree[A, T]) Add(point []A, payload T) error {
	if t.opts.metricsCollector == nil {
		return t.add(point, payload)
	}
	start := time.Now()
	err := t.add(point, payload)
	t.opts.metricsCollector.RecordInsert(time.Since(start), err)
	return err
}

func (t *KdTree[A, T]) add(point []A, payload T) error {
	if t.capacity <= 0 {
		return ErrZeroCapacity
	}
	if err := t.checkPoint(point); err != nil {
		return err
	}

	p := slices.Clone(point)
	n := t.root
	for {
		st, ok := n.body.(*stem[A, T])
		if !ok {
			break
		}
		n.extend(p)
		n.size++
		if st.routesLeft(p) {
			n = st.left
		} else {
			n = st.right
		}
	}
	t.addToLeaf(n, p, payload)
	t.generation++
	return nil
}

// addToLeaf appends to a leaf node and splits it once it overflows.
func (t *KdTree[A, T]) addToLeaf(n *node[A, T], point []A, payload T) {
	lf := n.body.(*leaf[A, T])
	n.extend(point)
	lf.points = append(lf.points, point)
	lf.payloads = append(lf.payloads, payload)
	n.size++
	if n.size > t.capacity {
		t.split(n, lf)
	}
}

// split turns an over-full leaf into a stem. When all points coincide there
// is no plane that separates them and the leaf is left over-full.
func (t *KdTree[A, T]) split(n *node[A, T], lf *leaf[A, T]) {
	dim := n.widestDimension()
	if dim < 0 {
		t.opts.logger.LogDegenerateSplit(n.size, t.capacity)
		return
	}

	value := n.midpoint(dim)
	st := &stem[A, T]{
		splitDimension: dim,
		splitValue:     value,
		inclusive:      n.minBounds[dim] == value,
		left:           newNode[A, T](t.dimensions),
		right:          newNode[A, T](t.dimensions),
	}
	for i, p := range lf.points {
		if st.routesLeft(p) {
			t.addToLeaf(st.left, p, lf.payloads[i])
		} else {
			t.addToLeaf(st.right, p, lf.payloads[i])
		}
	}
	n.body = st

	t.opts.logger.LogSplit(dim, float64(value), n.size)
}

// checkPoint validates dimensionality first, then finiteness.
func (t *KdTree[A, T]) checkPoint(point []A) error {
	if len(point) != t.dimensions {
		return &DimensionError{Expected: t.dimensions, Actual: len(point)}
	}
	for i, v := range point {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &CoordinateError{Index: i, Value: f}
		}
	}
	return nil
}

// Clone returns a deep copy of the tree structure and coordinates.
// Payloads are copied by assignment. The clone shares the original's options.
func (t *KdTree[A, T]) Clone() *KdTree[A, T] {
	return newTree(t.root.clone(), t.dimensions, t.capacity, t.opts)
}
