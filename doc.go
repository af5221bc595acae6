// Package kdtree provides an in-memory k-d tree for exact spatial search.
//
// A KdTree maps points of a fixed dimensionality to payloads. Leaves hold a
// bounded bucket of points; an overflowing leaf splits at the midpoint of its
// widest dimension. Splits are permanent and local.
//
// # Quick Start
//
//	tree := kdtree.New[float64, string](2)
//	_ = tree.Add([]float64{0, 0}, "origin")
//	_ = tree.Add([]float64{3, 4}, "far")
//
//	hits, _ := tree.Nearest([]float64{1, 1}, 1, distance.SquaredEuclidean[float64])
//	fmt.Println(hits[0].Payload, hits[0].Distance) // origin 2
//
// # Queries
//
// All nearest-style queries share one branch-and-bound traversal, which calls
// the caller's distance function only for leaf points and for the clamped
// projection of a query onto a subtree's bounding box:
//
//	tree.Nearest(q, k, fn)                 // k closest, ascending
//	tree.NearestWithinRadius(q, k, r, fn)  // k closest within r
//	tree.Within(q, r, fn)                  // all within r, ascending
//	tree.WithinUnsorted(q, r, fn)          // same set, any order
//	tree.WithinCount(q, r, fn)             // cardinality only
//	tree.BoundingBox(min, max)             // axis-aligned range
//
// The distance function must be monotone with respect to per-coordinate
// differences so that the box projection is a true lower bound. Every
// function in the distance package qualifies.
//
// # Lazy Iteration
//
// IterNearest and its variants compute results on demand:
//
//	it, _ := tree.IterNearest(q, fn)
//	for d, payload := range it.All() {
//	    if d > limit {
//	        break
//	    }
//	    use(payload)
//	}
//
// Mutating the tree invalidates live iterators; they stop and report
// ErrTreeModified from Err.
//
// # Persistence
//
// Snapshot and FromSnapshot convert to and from plain data. Save and Load
// wrap that in a small self-describing stream with a pluggable codec and
// optional LZ4 or ZSTD compression:
//
//	err := tree.Save(w, func(o *kdtree.SaveOptions) {
//	    o.Compression = codec.CompressionZSTD
//	})
//	restored, err := kdtree.Load[float64, string](r)
//
// # Concurrency
//
// A tree is not safe for concurrent mutation. Read-only queries may run from
// many goroutines when no mutation is interleaved; NearestBatch and
// WithinCountBatch do exactly that with a bounded worker count.
package kdtree
