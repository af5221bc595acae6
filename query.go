package kdtree

import (
	"math"
	"time"

	"github.com/hupe1980/kdtree/distance"
	"github.com/hupe1980/kdtree/internal/pool"
	"github.com/hupe1980/kdtree/internal/queue"
)

// Neighbor is a query result: a payload and its distance from the query point.
type Neighbor[A Float, T any] struct {
	Distance A
	Payload  T
}

// Unbounded returns +Inf, the radius that places no limit on a query.
func Unbounded[A Float]() A {
	return A(math.Inf(1))
}

// Nearest returns the k records closest to point, ascending by distance.
// Ties are returned in no particular order. k larger than Size is clamped.
func (t *KdTree[A, T]) Nearest(point []A, k int, fn distance.Func[A]) ([]Neighbor[A, T], error) {
	return t.observe("nearest", func() ([]Neighbor[A, T], error) {
		return t.nearestWithinRadius(point, k, Unbounded[A](), fn, true)
	})
}

// NearestWithinRadius returns up to k records closest to point whose distance
// is at most radius, ascending. Pass Unbounded for no radius limit; a
// negative or NaN radius matches nothing.
func (t *KdTree[A, T]) NearestWithinRadius(point []A, k int, radius A, fn distance.Func[A]) ([]Neighbor[A, T], error) {
	return t.observe("nearest_within_radius", func() ([]Neighbor[A, T], error) {
		return t.nearestWithinRadius(point, k, radius, fn, true)
	})
}

// Within returns every record whose distance to point is at most radius,
// ascending by distance.
func (t *KdTree[A, T]) Within(point []A, radius A, fn distance.Func[A]) ([]Neighbor[A, T], error) {
	return t.observe("within", func() ([]Neighbor[A, T], error) {
		return t.nearestWithinRadius(point, t.Size(), radius, fn, true)
	})
}

// WithinUnsorted returns the same set as Within without ordering it.
func (t *KdTree[A, T]) WithinUnsorted(point []A, radius A, fn distance.Func[A]) ([]Neighbor[A, T], error) {
	return t.observe("within_unsorted", func() ([]Neighbor[A, T], error) {
		return t.nearestWithinRadius(point, t.Size(), radius, fn, false)
	})
}

// WithinCount returns the number of records Within would return.
func (t *KdTree[A, T]) WithinCount(point []A, radius A, fn distance.Func[A]) (int, error) {
	var start time.Time
	if t.opts.metricsCollector != nil {
		start = time.Now()
	}
	evaluated, err := t.search(point, t.Size(), radius, fn)
	count := 0
	if evaluated != nil {
		count = evaluated.Len()
	}
	if t.opts.metricsCollector != nil {
		t.opts.metricsCollector.RecordSearch("within_count", count, time.Since(start), err)
	}
	return count, err
}

// BoundingBox returns the payloads of every record inside the closed box
// [min, max]. Both corners are validated like points.
func (t *KdTree[A, T]) BoundingBox(min, max []A) ([]T, error) {
	var start time.Time
	if t.opts.metricsCollector != nil {
		start = time.Now()
	}
	result, err := t.boundingBox(min, max)
	if t.opts.metricsCollector != nil {
		t.opts.metricsCollector.RecordSearch("bounding_box", len(result), time.Since(start), err)
	}
	return result, err
}

func (t *KdTree[A, T]) boundingBox(lo, hi []A) ([]T, error) {
	if err := t.checkPoint(lo); err != nil {
		return nil, err
	}
	if err := t.checkPoint(hi); err != nil {
		return nil, err
	}

	var result []T
	stack := []*node[A, T]{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.size == 0 {
			continue
		}

		switch b := n.body.(type) {
		case *stem[A, T]:
			if b.routesLeft(lo) {
				stack = append(stack, b.left)
			}
			if !b.routesLeft(hi) {
				stack = append(stack, b.right)
			}
		case *leaf[A, T]:
			for i, p := range b.points {
				if inBox(lo, hi, p) {
					result = append(result, b.payloads[i])
				}
			}
		}
	}
	return result, nil
}

func (t *KdTree[A, T]) observe(op string, fn func() ([]Neighbor[A, T], error)) ([]Neighbor[A, T], error) {
	if t.opts.metricsCollector == nil {
		return fn()
	}
	start := time.Now()
	result, err := fn()
	t.opts.metricsCollector.RecordSearch(op, len(result), time.Since(start), err)
	return result, err
}

func (t *KdTree[A, T]) nearestWithinRadius(point []A, k int, radius A, fn distance.Func[A], sorted bool) ([]Neighbor[A, T], error) {
	evaluated, err := t.search(point, k, radius, fn)
	if err != nil || evaluated == nil {
		return nil, err
	}

	var items []queue.Item[A, T]
	if sorted {
		items = evaluated.Sorted()
	} else {
		items = evaluated.Items()
	}
	result := make([]Neighbor[A, T], len(items))
	for i, it := range items {
		result[i] = Neighbor[A, T]{Distance: it.Distance, Payload: it.Value}
	}
	return result, nil
}

// search runs the branch-and-bound k-nearest traversal and returns the
// bounded max-queue of accepted results (nil when k clamps to zero).
//
// pending holds subtrees keyed by a lower bound on their distance, smallest
// first. The loop stops once the closest pending subtree is beyond radius or
// cannot beat the current k-th best.
func (t *KdTree[A, T]) search(point []A, k int, radius A, fn distance.Func[A]) (*queue.PriorityQueue[A, T], error) {
	if err := t.checkPoint(point); err != nil {
		return nil, err
	}
	k = min(k, t.root.size)
	if k <= 0 {
		return nil, nil
	}

	sc := t.searchPool.Get()
	defer t.searchPool.Put(sc)

	s := searcher[A, T]{
		point:     point,
		k:         k,
		radius:    radius,
		fn:        fn,
		pending:   sc.pending,
		evaluated: queue.NewMax[A, T](min(k, initialResultCap)),
		scratch:   sc.scratch,
	}
	s.pending.PushItem(queue.Item[A, *node[A, T]]{Distance: 0, Value: t.root})

	for {
		top, ok := s.pending.TopItem()
		if !ok || !(top.Distance <= radius) {
			break
		}
		if s.evaluated.Len() >= k {
			worst, _ := s.evaluated.TopItem()
			if top.Distance > worst.Distance {
				break
			}
		}
		s.pending.PopItem()
		s.step(top.Value)
	}
	return s.evaluated, nil
}

// initialResultCap is the starting result-queue capacity. Radius queries pass
// k = Size, so the queue grows with the matches instead.
const initialResultCap = 16

// maxPooledPending bounds the pending-queue capacity a pooled context may keep.
const maxPooledPending = 4096

// searchContext holds the per-query buffers that do not escape a query.
type searchContext[A Float, T comparable] struct {
	pending *queue.PriorityQueue[A, *node[A, T]]
	scratch []A
}

func newSearchPool[A Float, T comparable](dimensions int) *pool.Pool[*searchContext[A, T]] {
	dimensions = max(dimensions, 0)
	return pool.New(
		func() *searchContext[A, T] {
			return &searchContext[A, T]{
				pending: queue.NewMin[A, *node[A, T]](16),
				scratch: make([]A, dimensions),
			}
		},
		func(sc *searchContext[A, T]) { sc.pending.Reset() },
		func(sc *searchContext[A, T]) bool { return sc.pending.Cap() <= maxPooledPending },
	)
}

type searcher[A Float, T comparable] struct {
	point     []A
	k         int
	radius    A
	fn        distance.Func[A]
	pending   *queue.PriorityQueue[A, *node[A, T]]
	evaluated *queue.PriorityQueue[A, T]
	scratch   []A
}

// step descends from n to the leaf on point's side, queueing each sibling
// that could still hold a result, then scores the leaf's points.
func (s *searcher[A, T]) step(n *node[A, T]) {
	threshold := s.radius
	if s.evaluated.Len() >= s.k {
		if worst, _ := s.evaluated.TopItem(); worst.Distance < threshold {
			threshold = worst.Distance
		}
	}

	for {
		st, ok := n.body.(*stem[A, T])
		if !ok {
			break
		}
		near, far := st.left, st.right
		if !st.routesLeft(s.point) {
			near, far = far, near
		}
		if far.size > 0 {
			if bound := far.distanceToBox(s.point, s.fn, s.scratch); bound <= threshold {
				s.pending.PushItem(queue.Item[A, *node[A, T]]{Distance: bound, Value: far})
			}
		}
		n = near
	}

	lf := n.body.(*leaf[A, T])
	for i, p := range lf.points {
		d := s.fn(s.point, p)
		if !(d <= s.radius) {
			continue
		}
		item := queue.Item[A, T]{Distance: d, Value: lf.payloads[i]}
		if s.evaluated.Len() < s.k {
			s.evaluated.PushItem(item)
		} else if worst, _ := s.evaluated.TopItem(); d < worst.Distance {
			s.evaluated.ReplaceTop(item)
		}
	}
}
