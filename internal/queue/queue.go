// Package queue provides the ranked-element priority queue used by tree traversal.
package queue

import "cmp"

// Item is a value ranked by distance.
type Item[D cmp.Ordered, V any] struct {
	Distance D // Distance is the priority of the item in the queue.
	Value    V // Value is the ranked element (a subtree or a payload reference).
}

// PriorityQueue is a binary heap of Items.
// Comparisons use cmp.Less, which orders NaN before every other value, so the
// heap keeps a total order even if a distance function misbehaves.
type PriorityQueue[D cmp.Ordered, V any] struct {
	isMaxHeap bool
	items     []Item[D, V]
}

// NewMin initializes a queue whose top is the smallest distance.
func NewMin[D cmp.Ordered, V any](capacity int) *PriorityQueue[D, V] {
	return &PriorityQueue[D, V]{
		isMaxHeap: false,
		items:     make([]Item[D, V], 0, capacity),
	}
}

// NewMax initializes a queue whose top is the largest distance.
func NewMax[D cmp.Ordered, V any](capacity int) *PriorityQueue[D, V] {
	return &PriorityQueue[D, V]{
		isMaxHeap: true,
		items:     make([]Item[D, V], 0, capacity),
	}
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue[D, V]) Len() int { return len(pq.items) }

// TopItem returns the top element of the heap.
func (pq *PriorityQueue[D, V]) TopItem() (Item[D, V], bool) {
	if len(pq.items) == 0 {
		return Item[D, V]{}, false
	}
	return pq.items[0], true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue[D, V]) PushItem(item Item[D, V]) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PopItem removes and returns the top element while maintaining the heap invariant.
func (pq *PriorityQueue[D, V]) PopItem() (Item[D, V], bool) {
	n := len(pq.items)
	if n == 0 {
		return Item[D, V]{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items[n-1] = Item[D, V]{} // release references for GC
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// ReplaceTop swaps the top element for item in a single sift.
// It is the bounded-queue admission step: drop the worst, keep the newcomer.
func (pq *PriorityQueue[D, V]) ReplaceTop(item Item[D, V]) {
	if len(pq.items) == 0 {
		pq.PushItem(item)
		return
	}
	pq.items[0] = item
	pq.siftDown(0)
}

// Cap returns the capacity of the backing slice.
func (pq *PriorityQueue[D, V]) Cap() int { return cap(pq.items) }

// Items returns the backing slice in heap order (not sorted).
// The slice is shared with the queue and must not be modified.
func (pq *PriorityQueue[D, V]) Items() []Item[D, V] {
	return pq.items
}

// Sorted drains the queue and returns its items by ascending distance,
// regardless of heap direction.
func (pq *PriorityQueue[D, V]) Sorted() []Item[D, V] {
	n := len(pq.items)
	out := make([]Item[D, V], n)
	for i := range n {
		item, _ := pq.PopItem()
		if pq.isMaxHeap {
			out[n-1-i] = item
		} else {
			out[i] = item
		}
	}
	return out
}

// Reset clears the priority queue for reuse.
func (pq *PriorityQueue[D, V]) Reset() {
	clear(pq.items)
	pq.items = pq.items[:0]
}

func (pq *PriorityQueue[D, V]) less(i, j int) bool {
	if pq.isMaxHeap {
		return cmp.Less(pq.items[j].Distance, pq.items[i].Distance)
	}
	return cmp.Less(pq.items[i].Distance, pq.items[j].Distance)
}

func (pq *PriorityQueue[D, V]) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue[D, V]) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
