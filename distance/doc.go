// Package distance provides coordinate distance functions for the k-d tree.
//
// The tree never picks a metric on its own: every query takes a Func, and
// this package ships the common ones.
//
// # Supported Metrics
//
//   - SquaredEuclidean: sum of squared differences (cheapest, same ordering as L2)
//   - Euclidean: L2 distance
//   - Manhattan: L1 distance
//   - Chebyshev: L∞ distance
//
// Pruning in the tree relies on one property only: the distance from a query
// to the point of a box nearest to it (obtained by clamping) must not exceed
// the distance to any point inside that box. All metrics above satisfy it.
//
// # Usage
//
//	d := distance.SquaredEuclidean([]float64{0, 0}, []float64{1, 1}) // 2
//
//	counter := distance.NewCounter(distance.SquaredEuclidean[float64])
//	tree.Nearest(q, 8, counter.Func())
//	fmt.Println(counter.Calls())
package distance
