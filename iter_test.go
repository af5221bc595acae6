package kdtree_test

import (
	"testing"

	"github.com/hupe1980/kdtree"
	"github.com/hupe1980/kdtree/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterNearest_MatchesEager(t *testing.T) {
	rng := testutil.NewRNG(4711)
	points := rng.UniformPoints(250, 3)
	records := testutil.Records(points)
	tree := buildTree(t, records, 4)

	for _, q := range rng.UniformPoints(5, 3) {
		it, err := tree.IterNearest(q, sqEuclid)
		require.NoError(t, err)

		var got []float64
		for d := range it.All() {
			got = append(got, d)
		}
		require.NoError(t, it.Err())

		want := testutil.ExactNearest(records, q, len(points), sqEuclid)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].Distance, got[i])
		}
	}
}

func TestIterNearestWithinRadius(t *testing.T) {
	tree := scenarioTree(t)

	it, err := tree.IterNearestWithinRadius([]float64{1, 1}, 2, sqEuclid)
	require.NoError(t, err)

	var got []kdtree.Neighbor[float64, int]
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, n)
	}
	require.NoError(t, it.Err())
	require.Len(t, got, 3)
	assert.Equal(t, kdtree.Neighbor[float64, int]{Distance: 0, Payload: 1}, got[0])
	assert.Equal(t, 2.0, got[1].Distance)
	assert.Equal(t, 2.0, got[2].Distance)

	t.Run("NegativeRadius", func(t *testing.T) {
		it, err := tree.IterNearestWithinRadius([]float64{1, 1}, -1, sqEuclid)
		require.NoError(t, err)
		_, ok := it.Next()
		assert.False(t, ok)
	})
}

func TestIterNearest_EarlyBreak(t *testing.T) {
	tree := scenarioTree(t)

	it, err := tree.IterNearest([]float64{3, 3}, sqEuclid)
	require.NoError(t, err)

	var payloads []int
	for _, p := range it.All() {
		payloads = append(payloads, p)
		if len(payloads) == 2 {
			break
		}
	}
	assert.Equal(t, []int{3, 2}, payloads)

	// The iterator resumes where the loop stopped.
	n, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, 1, n.Payload)
}

func TestIterNearestMut(t *testing.T) {
	tree := kdtree.NewWithCapacity[float64, string](2, 2)
	for i, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, tree.Add([]float64{float64(i), 0}, name))
	}

	it, err := tree.IterNearestMut([]float64{0, 0}, sqEuclid)
	require.NoError(t, err)
	for d, p := range it.All() {
		if d <= 1 {
			*p += "!"
		}
	}
	require.NoError(t, it.Err())

	got, err := tree.BoundingBox([]float64{0, 0}, []float64{3, 0})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a!", "b!", "c", "d"}, got)

	t.Run("WithinRadius", func(t *testing.T) {
		it, err := tree.IterNearestWithinRadiusMut([]float64{3, 0}, 0, sqEuclid)
		require.NoError(t, err)

		d, p, ok := it.Next()
		require.True(t, ok)
		assert.Equal(t, 0.0, d)
		assert.Equal(t, "d", *p)

		_, _, ok = it.Next()
		assert.False(t, ok)
	})
}

func TestIterNearest_TreeModified(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		tree := scenarioTree(t)
		it, err := tree.IterNearest([]float64{0, 0}, sqEuclid)
		require.NoError(t, err)

		_, ok := it.Next()
		require.True(t, ok)

		require.NoError(t, tree.Add([]float64{5, 5}, 5))
		_, ok = it.Next()
		assert.False(t, ok)
		assert.ErrorIs(t, it.Err(), kdtree.ErrTreeModified)
	})

	t.Run("Remove", func(t *testing.T) {
		tree := scenarioTree(t)
		it, err := tree.IterNearestMut([]float64{0, 0}, sqEuclid)
		require.NoError(t, err)

		n, err := tree.Remove([]float64{3, 3}, 3)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		_, _, ok := it.Next()
		assert.False(t, ok)
		assert.ErrorIs(t, it.Err(), kdtree.ErrTreeModified)
	})

	t.Run("NoopRemoveKeepsIteratorValid", func(t *testing.T) {
		tree := scenarioTree(t)
		it, err := tree.IterNearest([]float64{0, 0}, sqEuclid)
		require.NoError(t, err)

		n, err := tree.Remove([]float64{3, 3}, 99)
		require.NoError(t, err)
		require.Zero(t, n)

		_, ok := it.Next()
		assert.True(t, ok)
		assert.NoError(t, it.Err())
	})

	t.Run("FailedAddKeepsIteratorValid", func(t *testing.T) {
		tree := scenarioTree(t)
		it, err := tree.IterNearest([]float64{0, 0}, sqEuclid)
		require.NoError(t, err)

		require.Error(t, tree.Add([]float64{1}, 9))

		_, ok := it.Next()
		assert.True(t, ok)
	})
}
