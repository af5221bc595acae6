package kdtree

import (
	"slices"
	"time"
)

// Remove deletes every record whose point equals point and whose payload
// equals payload, returning how many were deleted. Removing something that
// is not stored is a no-op returning 0.
//
// Bounding boxes are not shrunk and emptied leaves are not merged.
func (t *KdTree[A, T]) Remove(point []A, payload T) (int, error) {
	return t.RemoveFunc(point, func(v T) bool { return v == payload })
}

// RemoveFunc deletes every record at point whose payload satisfies match.
func (t *KdTree[A, T]) RemoveFunc(point []A, match func(T) bool) (int, error) {
	if t.opts.metricsCollector == nil {
		return t.remove(point, match)
	}
	start := time.Now()
	removed, err := t.remove(point, match)
	t.opts.metricsCollector.RecordRemove(removed, time.Since(start), err)
	return removed, err
}

func (t *KdTree[A, T]) remove(point []A, match func(T) bool) (int, error) {
	if err := t.checkPoint(point); err != nil {
		return 0, err
	}
	removed := t.root.remove(point, match)
	if removed > 0 {
		t.generation++
	}
	return removed, nil
}

func (n *node[A, T]) remove(point []A, match func(T) bool) int {
	if n.size == 0 || !n.mayContain(point) {
		return 0
	}

	var removed int
	switch b := n.body.(type) {
	case *leaf[A, T]:
		removed = b.remove(point, match)
	case *stem[A, T]:
		removed = b.left.remove(point, match) + b.right.remove(point, match)
	}
	n.size -= removed
	return removed
}

// remove compacts the bucket in place, keeping insertion order of survivors.
func (l *leaf[A, T]) remove(point []A, match func(T) bool) int {
	kept := 0
	for i, p := range l.points {
		if slices.Equal(p, point) && match(l.payloads[i]) {
			continue
		}
		l.points[kept] = p
		l.payloads[kept] = l.payloads[i]
		kept++
	}

	removed := len(l.points) - kept
	clear(l.points[kept:])
	clear(l.payloads[kept:])
	l.points = l.points[:kept]
	l.payloads = l.payloads[:kept]
	return removed
}
