package kdtree

import "github.com/hupe1980/kdtree/distance"

// distanceToBox returns fn(point, q) where q is point clamped into the node's
// box: a lower bound on the distance from point to anything in the subtree.
// scratch must have the tree's dimensionality; it is overwritten.
func (n *node[A, T]) distanceToBox(point []A, fn distance.Func[A], scratch []A) A {
	for d, v := range point {
		switch {
		case v > n.maxBounds[d]:
			scratch[d] = n.maxBounds[d]
		case v < n.minBounds[d]:
			scratch[d] = n.minBounds[d]
		default:
			scratch[d] = v
		}
	}
	return fn(point, scratch)
}

// mayContain reports whether point lies inside the node's box.
// Boxes over-approximate after removals, so true does not imply presence.
func (n *node[A, T]) mayContain(point []A) bool {
	return inBox(n.minBounds, n.maxBounds, point)
}

// inBox reports lo[d] <= p[d] <= hi[d] for every dimension.
func inBox[A Float](lo, hi, p []A) bool {
	for d, v := range p {
		if v < lo[d] || v > hi[d] {
			return false
		}
	}
	return true
}
