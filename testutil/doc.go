// Package testutil provides testing utilities for kdtree.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random points and for computing
// exact answers by linear scan.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformPoints(1000, 3)         // uniform [0, 1)
//	points = rng.ClusteredPoints(1000, 3, 8, 0.05)
//
// # Exact Search (Ground Truth)
//
//	records := testutil.Records(points)
//	want := testutil.ExactNearest(records, query, k, distance.SquaredEuclidean[float64])
package testutil
