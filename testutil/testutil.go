package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/kdtree/distance"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints generates random points with coordinates in [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformPoints(num, dimensions int) [][]float64 {
	return r.UniformRangePoints(num, dimensions, 0, 1)
}

// UniformRangePoints generates random points with coordinates in [lo, hi).
func (r *RNG) UniformRangePoints(num, dimensions int, lo, hi float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	points := make([][]float64, num)
	span := hi - lo

	for i := range num {
		p := data[i*dimensions : (i+1)*dimensions : (i+1)*dimensions]
		for j := range p {
			p[j] = lo + r.rand.Float64()*span
		}
		points[i] = p
	}

	return points
}

// GridPoints returns every integer point of the n^dimensions grid starting at
// the origin, in row-major order. Grids produce many equal distances and
// many coordinates lying exactly on split planes.
func GridPoints(n, dimensions int) [][]float64 {
	if n <= 0 || dimensions <= 0 {
		return nil
	}

	total := 1
	for range dimensions {
		total *= n
	}

	points := make([][]float64, total)
	for i := range total {
		p := make([]float64, dimensions)
		rem := i
		for d := dimensions - 1; d >= 0; d-- {
			p[d] = float64(rem % n)
			rem /= n
		}
		points[i] = p
	}

	return points
}

// ClusteredPoints generates points scattered with Gaussian noise around
// random centroids in [0, 1)^dimensions.
func (r *RNG) ClusteredPoints(num, dimensions, clusters int, spread float64) [][]float64 {
	centroids := r.UniformPoints(max(clusters, 1), dimensions)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	points := make([][]float64, num)

	for i := range num {
		centroid := centroids[i%len(centroids)]
		p := data[i*dimensions : (i+1)*dimensions : (i+1)*dimensions]
		for j := range p {
			p[j] = centroid[j] + r.rand.NormFloat64()*spread
		}
		points[i] = p
	}

	return points
}

// Record is a stored point and its payload, as handed to a tree.
type Record[A distance.Float, T any] struct {
	Point   []A
	Payload T
}

// Result is a reference answer.
type Result[A distance.Float, T any] struct {
	Distance A
	Payload  T
}

// Records pairs each point with its index as payload.
func Records[A distance.Float](points [][]A) []Record[A, int] {
	records := make([]Record[A, int], len(points))
	for i, p := range points {
		records[i] = Record[A, int]{Point: p, Payload: i}
	}
	return records
}

// ExactWithin scans every record and returns those within radius of query,
// ascending by distance. Ties keep record order.
func ExactWithin[A distance.Float, T any](records []Record[A, T], query []A, radius A, fn distance.Func[A]) []Result[A, T] {
	var results []Result[A, T]
	for _, rec := range records {
		if d := fn(query, rec.Point); d <= radius {
			results = append(results, Result[A, T]{Distance: d, Payload: rec.Payload})
		}
	}

	slices.SortStableFunc(results, func(a, b Result[A, T]) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})

	return results
}

// ExactNearest returns the k records closest to query, ascending.
func ExactNearest[A distance.Float, T any](records []Record[A, T], query []A, k int, fn distance.Func[A]) []Result[A, T] {
	results := ExactWithin(records, query, A(math.Inf(1)), fn)
	if len(results) > k {
		results = results[:max(k, 0)]
	}
	return results
}

// ExactBoundingBox returns the payloads of records inside the closed box
// [lo, hi], in record order.
func ExactBoundingBox[A distance.Float, T any](records []Record[A, T], lo, hi []A) []T {
	var results []T
outer:
	for _, rec := range records {
		for d, v := range rec.Point {
			if v < lo[d] || v > hi[d] {
				continue outer
			}
		}
		results = append(results, rec.Payload)
	}
	return results
}
