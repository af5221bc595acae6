// Package pool provides typed object pools for allocation-free queries.
package pool

import "sync"

// Pool is a typed sync.Pool. Values are reset when returned so pooled
// objects do not pin memory they referenced during their last use.
type Pool[T any] struct {
	p     sync.Pool
	reset func(T)
	keep  func(T) bool
}

// New creates a pool. newFn builds a fresh value; reset (optional) clears a
// value on Put; keep (optional) rejects values that grew too large to be
// worth retaining.
func New[T any](newFn func() T, reset func(T), keep func(T) bool) *Pool[T] {
	return &Pool[T]{
		p:     sync.Pool{New: func() any { return newFn() }},
		reset: reset,
		keep:  keep,
	}
}

// Get retrieves a value from the pool, allocating one if it is empty.
func (p *Pool[T]) Get() T {
	return p.p.Get().(T)
}

// Put returns v to the pool for reuse.
func (p *Pool[T]) Put(v T) {
	if p.keep != nil && !p.keep(v) {
		return
	}
	if p.reset != nil {
		p.reset(v)
	}
	p.p.Put(v)
}
