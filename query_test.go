package kdtree_test

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/hupe1980/kdtree"
	"github.com/hupe1980/kdtree/distance"
	"github.com/hupe1980/kdtree/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sqEuclid = distance.SquaredEuclidean[float64]

func scenarioTree(t testing.TB) *kdtree.KdTree[float64, int] {
	t.Helper()
	tree := kdtree.NewWithCapacity[float64, int](2, 2)
	for i := range 4 {
		require.NoError(t, tree.Add([]float64{float64(i), float64(i)}, i))
	}
	return tree
}

func buildTree(t testing.TB, records []testutil.Record[float64, int], capacity int) *kdtree.KdTree[float64, int] {
	t.Helper()
	dims := 0
	if len(records) > 0 {
		dims = len(records[0].Point)
	}
	tree := kdtree.NewWithCapacity[float64, int](dims, capacity)
	for _, r := range records {
		require.NoError(t, tree.Add(r.Point, r.Payload))
	}
	return tree
}

func distances[T any](ns []kdtree.Neighbor[float64, T]) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = n.Distance
	}
	return out
}

func asResults(ns []kdtree.Neighbor[float64, int]) []testutil.Result[float64, int] {
	out := make([]testutil.Result[float64, int], len(ns))
	for i, n := range ns {
		out[i] = testutil.Result[float64, int]{Distance: n.Distance, Payload: n.Payload}
	}
	return out
}

func TestScenario(t *testing.T) {
	tree := scenarioTree(t)

	t.Run("Nearest", func(t *testing.T) {
		got, err := tree.Nearest([]float64{0, 0}, 4, sqEuclid)
		require.NoError(t, err)
		assert.Equal(t, []kdtree.Neighbor[float64, int]{
			{Distance: 0, Payload: 0},
			{Distance: 2, Payload: 1},
			{Distance: 8, Payload: 2},
			{Distance: 18, Payload: 3},
		}, got)
	})

	t.Run("Within", func(t *testing.T) {
		got, err := tree.Within([]float64{1, 1}, 2, sqEuclid)
		require.NoError(t, err)
		assert.ElementsMatch(t, []kdtree.Neighbor[float64, int]{
			{Distance: 0, Payload: 1},
			{Distance: 2, Payload: 0},
			{Distance: 2, Payload: 2},
		}, got)
		assert.Equal(t, kdtree.Neighbor[float64, int]{Distance: 0, Payload: 1}, got[0])
	})

	t.Run("BoundingBox", func(t *testing.T) {
		got, err := tree.BoundingBox([]float64{0, 0}, []float64{1, 1})
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{0, 1}, got)
	})
}

func TestDistanceEvaluationBudget(t *testing.T) {
	tree := scenarioTree(t)
	counter := distance.NewCounter(sqEuclid)
	fn := counter.Func()

	t.Run("Nearest", func(t *testing.T) {
		for k, want := range []int64{0, 2, 4, 6, 6, 6} {
			counter.Reset()
			_, err := tree.Nearest([]float64{0, 0}, k, fn)
			require.NoError(t, err)
			assert.Equal(t, want, counter.Calls(), "k=%d", k)
		}

		counter.Reset()
		_, err := tree.Nearest([]float64{1, 1}, 4, fn)
		require.NoError(t, err)
		assert.Equal(t, int64(6), counter.Calls())
	})

	t.Run("Within", func(t *testing.T) {
		tests := []struct {
			point  []float64
			radius float64
			want   int64
		}{
			{[]float64{0, 0}, 0, 2},
			{[]float64{1, 1}, 1, 3},
			{[]float64{1, 1}, 2, 6},
		}
		for _, tt := range tests {
			counter.Reset()
			_, err := tree.Within(tt.point, tt.radius, fn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, counter.Calls(), "within(%v, %v)", tt.point, tt.radius)

			counter.Reset()
			_, err = tree.WithinCount(tt.point, tt.radius, fn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, counter.Calls(), "within_count(%v, %v)", tt.point, tt.radius)
		}
	})

	t.Run("IterNearest", func(t *testing.T) {
		counter.Reset()
		it, err := tree.IterNearest([]float64{0, 0}, fn)
		require.NoError(t, err)
		assert.Equal(t, int64(0), counter.Calls())

		for i, want := range []int64{2, 2, 2, 0} {
			counter.Reset()
			n, ok := it.Next()
			require.True(t, ok)
			assert.Equal(t, i, n.Payload)
			assert.Equal(t, want, counter.Calls(), "next #%d", i)
		}

		_, ok := it.Next()
		assert.False(t, ok)
		assert.NoError(t, it.Err())
	})
}

func TestNearest_BruteForce(t *testing.T) {
	rng := testutil.NewRNG(4711)
	metrics := []distance.Metric{
		distance.MetricSquaredEuclidean,
		distance.MetricEuclidean,
		distance.MetricManhattan,
		distance.MetricChebyshev,
	}
	datasets := map[string][][]float64{
		"uniform":   rng.UniformPoints(200, 3),
		"clustered": rng.ClusteredPoints(200, 3, 4, 0.02),
		"grid":      testutil.GridPoints(6, 3),
	}
	queries := append(rng.UniformRangePoints(10, 3, -0.5, 5.5), []float64{2, 2, 2}, []float64{0, 0, 0})

	for name, points := range datasets {
		records := testutil.Records(points)
		for _, capacity := range []int{1, 3, 16} {
			tree := buildTree(t, records, capacity)
			for _, m := range metrics {
				fn, err := distance.Provider[float64](m)
				require.NoError(t, err)

				t.Run(fmt.Sprintf("%s/cap%d/%s", name, capacity, m), func(t *testing.T) {
					for _, q := range queries {
						for _, k := range []int{0, 1, 2, 7, len(points), len(points) + 1} {
							got, err := tree.Nearest(q, k, fn)
							require.NoError(t, err)

							want := testutil.ExactNearest(records, q, k, fn)
							require.Len(t, got, len(want))
							// Ties may order differently; distances must match exactly.
							for i := range want {
								assert.Equal(t, want[i].Distance, got[i].Distance)
								assert.Equal(t, fn(q, points[got[i].Payload]), got[i].Distance)
							}
						}
					}
				})
			}
		}
	}
}

func TestWithin_BruteForce(t *testing.T) {
	rng := testutil.NewRNG(42)
	points := rng.UniformPoints(300, 2)
	records := testutil.Records(points)
	tree := buildTree(t, records, 4)

	for _, q := range rng.UniformPoints(20, 2) {
		for _, radius := range []float64{0, 0.001, 0.01, 0.05, 0.5, 3} {
			want := testutil.ExactWithin(records, q, radius, sqEuclid)

			got, err := tree.Within(q, radius, sqEuclid)
			require.NoError(t, err)
			assert.ElementsMatch(t, want, asResults(got))
			assert.True(t, slices.IsSorted(distances(got)))

			unsorted, err := tree.WithinUnsorted(q, radius, sqEuclid)
			require.NoError(t, err)
			assert.ElementsMatch(t, want, asResults(unsorted))

			count, err := tree.WithinCount(q, radius, sqEuclid)
			require.NoError(t, err)
			assert.Equal(t, len(want), count)
		}
	}
}

func TestNearestWithinRadius(t *testing.T) {
	tree := scenarioTree(t)

	got, err := tree.NearestWithinRadius([]float64{0, 0}, 3, 8, sqEuclid)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 8}, distances(got))

	got, err = tree.NearestWithinRadius([]float64{0, 0}, 2, 8, sqEuclid)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2}, distances(got))

	got, err = tree.NearestWithinRadius([]float64{0, 0}, 10, kdtree.Unbounded[float64](), sqEuclid)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	for _, radius := range []float64{-1, math.NaN()} {
		got, err = tree.NearestWithinRadius([]float64{0, 0}, 4, radius, sqEuclid)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestBoundingBox_BruteForce(t *testing.T) {
	rng := testutil.NewRNG(7)
	points := append(rng.UniformRangePoints(400, 3, 0, 4), testutil.GridPoints(5, 3)...)
	records := testutil.Records(points)
	tree := buildTree(t, records, 5)

	boxes := [][2][]float64{
		{{0, 0, 0}, {4, 4, 4}},
		{{1, 1, 1}, {2, 2, 2}},
		{{1, 0, 3}, {1, 4, 3}},
		{{2, 2, 2}, {2, 2, 2}},
		{{3, 3, 3}, {1, 1, 1}},
		{{-10, -10, -10}, {-1, -1, -1}},
	}
	for _, box := range boxes {
		got, err := tree.BoundingBox(box[0], box[1])
		require.NoError(t, err)
		assert.ElementsMatch(t, testutil.ExactBoundingBox(records, box[0], box[1]), got, "box %v", box)
	}
}

func TestQueryErrors(t *testing.T) {
	tree := scenarioTree(t)

	_, err := tree.Nearest([]float64{0}, 1, sqEuclid)
	assert.ErrorIs(t, err, kdtree.ErrWrongDimension)

	_, err = tree.Within([]float64{0, math.Inf(1)}, 1, sqEuclid)
	assert.ErrorIs(t, err, kdtree.ErrNonFiniteCoordinate)

	_, err = tree.WithinCount([]float64{math.NaN(), 0, 0}, 1, sqEuclid)
	assert.ErrorIs(t, err, kdtree.ErrWrongDimension)

	_, err = tree.BoundingBox([]float64{0, 0}, []float64{math.NaN(), 1})
	assert.ErrorIs(t, err, kdtree.ErrNonFiniteCoordinate)

	_, err = tree.IterNearest([]float64{0, 0, 0}, sqEuclid)
	assert.ErrorIs(t, err, kdtree.ErrWrongDimension)
}

func TestQueries_EmptyAndZeroCapacity(t *testing.T) {
	for name, tree := range map[string]*kdtree.KdTree[float64, int]{
		"empty":        kdtree.New[float64, int](2),
		"zeroCapacity": kdtree.NewWithCapacity[float64, int](2, 0),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := tree.Nearest([]float64{0, 0}, 3, sqEuclid)
			require.NoError(t, err)
			assert.Empty(t, got)

			count, err := tree.WithinCount([]float64{0, 0}, 100, sqEuclid)
			require.NoError(t, err)
			assert.Zero(t, count)

			box, err := tree.BoundingBox([]float64{-1, -1}, []float64{1, 1})
			require.NoError(t, err)
			assert.Empty(t, box)

			it, err := tree.IterNearest([]float64{0, 0}, sqEuclid)
			require.NoError(t, err)
			_, ok := it.Next()
			assert.False(t, ok)
		})
	}
}

func TestQueries_Idempotent(t *testing.T) {
	rng := testutil.NewRNG(99)
	tree := buildTree(t, testutil.Records(rng.UniformPoints(100, 2)), 3)
	q := []float64{0.5, 0.5}

	first, err := tree.Nearest(q, 10, sqEuclid)
	require.NoError(t, err)
	for range 3 {
		again, err := tree.Nearest(q, 10, sqEuclid)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
