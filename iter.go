package kdtree

import (
	"iter"
	"slices"

	"github.com/hupe1980/kdtree/distance"
	"github.com/hupe1980/kdtree/internal/queue"
)

// walker is the resumable state behind the lazy nearest iterators. Unlike the
// eager search, evaluated is an unbounded min-queue: a result is released once
// no pending subtree can hold anything closer.
type walker[A Float, T comparable] struct {
	tree       *KdTree[A, T]
	generation uint64
	point      []A
	radius     A
	fn         distance.Func[A]
	pending    *queue.PriorityQueue[A, *node[A, T]]
	evaluated  *queue.PriorityQueue[A, *T]
	scratch    []A
	err        error
}

func (t *KdTree[A, T]) newWalker(point []A, radius A, fn distance.Func[A]) (*walker[A, T], error) {
	if err := t.checkPoint(point); err != nil {
		return nil, err
	}
	w := &walker[A, T]{
		tree:       t,
		generation: t.generation,
		point:      slices.Clone(point),
		radius:     radius,
		fn:         fn,
		pending:    queue.NewMin[A, *node[A, T]](16),
		evaluated:  queue.NewMin[A, *T](max(t.capacity, 0)),
		scratch:    make([]A, t.dimensions),
	}
	if t.root.size > 0 && 0 <= radius {
		w.pending.PushItem(queue.Item[A, *node[A, T]]{Distance: 0, Value: t.root})
	}
	return w, nil
}

// next advances the traversal until the closest evaluated record is known to
// be closer than anything still pending, then releases it.
func (w *walker[A, T]) next() (A, *T, bool) {
	if w.err != nil {
		return 0, nil, false
	}
	if w.tree.generation != w.generation {
		w.err = ErrTreeModified
		return 0, nil, false
	}

	for {
		top, ok := w.pending.TopItem()
		if !ok {
			break
		}
		if best, ok := w.evaluated.TopItem(); ok && best.Distance < top.Distance {
			break
		}
		w.pending.PopItem()
		w.step(top.Value)
	}

	best, ok := w.evaluated.PopItem()
	if !ok {
		return 0, nil, false
	}
	return best.Distance, best.Value, true
}

func (w *walker[A, T]) step(n *node[A, T]) {
	for {
		st, ok := n.body.(*stem[A, T])
		if !ok {
			break
		}
		near, far := st.left, st.right
		if !st.routesLeft(w.point) {
			near, far = far, near
		}
		if far.size > 0 {
			if bound := far.distanceToBox(w.point, w.fn, w.scratch); bound <= w.radius {
				w.pending.PushItem(queue.Item[A, *node[A, T]]{Distance: bound, Value: far})
			}
		}
		n = near
	}

	lf := n.body.(*leaf[A, T])
	for i, p := range lf.points {
		if d := w.fn(w.point, p); d <= w.radius {
			w.evaluated.PushItem(queue.Item[A, *T]{Distance: d, Value: &lf.payloads[i]})
		}
	}
}

// NearestIter yields records in ascending distance, computing only as much of
// the traversal as each call needs. It is not safe for concurrent use and
// stops with ErrTreeModified if the tree is mutated while it is live.
type NearestIter[A Float, T comparable] struct {
	w *walker[A, T]
}

// Next returns the next closest record, or false when the iterator is
// exhausted or stale. Check Err to tell the two apart.
func (it *NearestIter[A, T]) Next() (Neighbor[A, T], bool) {
	d, p, ok := it.w.next()
	if !ok {
		return Neighbor[A, T]{}, false
	}
	return Neighbor[A, T]{Distance: d, Payload: *p}, true
}

// Err returns ErrTreeModified if the tree changed during iteration.
func (it *NearestIter[A, T]) Err() error {
	return it.w.err
}

// All returns the remaining records as a range-over-func sequence of
// (distance, payload).
func (it *NearestIter[A, T]) All() iter.Seq2[A, T] {
	return func(yield func(A, T) bool) {
		for {
			n, ok := it.Next()
			if !ok || !yield(n.Distance, n.Payload) {
				return
			}
		}
	}
}

// NearestIterMut is NearestIter handing out pointers into the tree's payload
// storage. A pointer may be written through but must not be kept past the
// next Add or Remove.
type NearestIterMut[A Float, T comparable] struct {
	w *walker[A, T]
}

// Next returns the distance and payload pointer of the next closest record.
func (it *NearestIterMut[A, T]) Next() (A, *T, bool) {
	return it.w.next()
}

// Err returns ErrTreeModified if the tree changed during iteration.
func (it *NearestIterMut[A, T]) Err() error {
	return it.w.err
}

// All returns the remaining records as a sequence of (distance, *payload).
func (it *NearestIterMut[A, T]) All() iter.Seq2[A, *T] {
	return func(yield func(A, *T) bool) {
		for {
			d, p, ok := it.Next()
			if !ok || !yield(d, p) {
				return
			}
		}
	}
}

// IterNearest returns a lazy iterator over every record, closest first.
func (t *KdTree[A, T]) IterNearest(point []A, fn distance.Func[A]) (*NearestIter[A, T], error) {
	return t.IterNearestWithinRadius(point, Unbounded[A](), fn)
}

// IterNearestWithinRadius is IterNearest restricted to distances ≤ radius.
func (t *KdTree[A, T]) IterNearestWithinRadius(point []A, radius A, fn distance.Func[A]) (*NearestIter[A, T], error) {
	w, err := t.newWalker(point, radius, fn)
	if err != nil {
		return nil, err
	}
	return &NearestIter[A, T]{w: w}, nil
}

// IterNearestMut returns a lazy iterator yielding mutable payload pointers.
func (t *KdTree[A, T]) IterNearestMut(point []A, fn distance.Func[A]) (*NearestIterMut[A, T], error) {
	return t.IterNearestWithinRadiusMut(point, Unbounded[A](), fn)
}

// IterNearestWithinRadiusMut is IterNearestMut restricted to distances ≤ radius.
func (t *KdTree[A, T]) IterNearestWithinRadiusMut(point []A, radius A, fn distance.Func[A]) (*NearestIterMut[A, T], error) {
	w, err := t.newWalker(point, radius, fn)
	if err != nil {
		return nil, err
	}
	return &NearestIterMut[A, T]{w: w}, nil
}
