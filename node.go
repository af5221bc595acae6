package kdtree

import "math"

// node is one subtree. Its body is either a *leaf (point bucket) or a
// *stem (split plane + two children); a node is never both and never neither.
type node[A Float, T comparable] struct {
	size      int
	minBounds []A
	maxBounds []A
	body      nodeBody[A, T]
}

type nodeBody[A Float, T comparable] interface {
	isLeaf() bool
}

type leaf[A Float, T comparable] struct {
	points   [][]A
	payloads []T
}

func (*leaf[A, T]) isLeaf() bool { return true }

type stem[A Float, T comparable] struct {
	splitDimension int
	splitValue     A
	// inclusive records whether the node's lower bound equalled splitValue
	// when the split was made; boundary points then route left.
	inclusive   bool
	left, right *node[A, T]
}

func (*stem[A, T]) isLeaf() bool { return false }

// newNode returns an empty leaf whose box is inverted (+Inf, -Inf) so the
// first extend sets it exactly.
func newNode[A Float, T comparable](dimensions int) *node[A, T] {
	dimensions = max(dimensions, 0)
	n := &node[A, T]{
		minBounds: make([]A, dimensions),
		maxBounds: make([]A, dimensions),
		body:      &leaf[A, T]{},
	}
	for d := range dimensions {
		n.minBounds[d] = A(math.Inf(1))
		n.maxBounds[d] = A(math.Inf(-1))
	}
	return n
}

// routesLeft is the single routing rule shared by insertion, redistribution,
// nearest traversal and bounding-box descent. The inclusive flag is decided
// once, when the stem is created, from the node's min bound at that moment.
func (s *stem[A, T]) routesLeft(point []A) bool {
	v := point[s.splitDimension]
	if s.inclusive {
		return v <= s.splitValue
	}
	return v < s.splitValue
}

// extend widens the box to cover point. Boxes never shrink.
func (n *node[A, T]) extend(point []A) {
	for d, v := range point {
		if v < n.minBounds[d] {
			n.minBounds[d] = v
		}
		if v > n.maxBounds[d] {
			n.maxBounds[d] = v
		}
	}
}

// widestDimension returns the first dimension with the largest positive
// extent, or -1 when every stored point coincides.
func (n *node[A, T]) widestDimension() int {
	dim := -1
	var widest A
	for d := range n.minBounds {
		diff := n.maxBounds[d] - n.minBounds[d]
		if diff > widest {
			widest = diff
			dim = d
		}
	}
	return dim
}

// midpoint returns the split value along dim. Halving both bounds first keeps
// the value finite when the extent itself overflows.
func (n *node[A, T]) midpoint(dim int) A {
	lo, hi := n.minBounds[dim], n.maxBounds[dim]
	v := lo + (hi-lo)/2
	if math.IsInf(float64(v), 0) {
		v = lo/2 + hi/2
	}
	return v
}

func (n *node[A, T]) clone() *node[A, T] {
	c := &node[A, T]{
		size:      n.size,
		minBounds: append([]A(nil), n.minBounds...),
		maxBounds: append([]A(nil), n.maxBounds...),
	}
	switch b := n.body.(type) {
	case *leaf[A, T]:
		points := make([][]A, len(b.points))
		for i, p := range b.points {
			points[i] = append([]A(nil), p...)
		}
		c.body = &leaf[A, T]{
			points:   points,
			payloads: append([]T(nil), b.payloads...),
		}
	case *stem[A, T]:
		c.body = &stem[A, T]{
			splitDimension: b.splitDimension,
			splitValue:     b.splitValue,
			inclusive:      b.inclusive,
			left:           b.left.clone(),
			right:          b.right.clone(),
		}
	}
	return c
}
