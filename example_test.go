package kdtree_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/hupe1980/kdtree"
	"github.com/hupe1980/kdtree/codec"
	"github.com/hupe1980/kdtree/distance"
)

func exampleTree() *kdtree.KdTree[float64, string] {
	tree := kdtree.NewWithCapacity[float64, string](2, 2)
	cities := []struct {
		name string
		x, y float64
	}{
		{"Aachen", 0, 0},
		{"Bonn", 1, 1},
		{"Cologne", 2, 2},
		{"Dortmund", 3, 3},
	}
	for _, c := range cities {
		if err := tree.Add([]float64{c.x, c.y}, c.name); err != nil {
			log.Fatal(err)
		}
	}
	return tree
}

// ExampleKdTree_Nearest finds the two closest records.
func ExampleKdTree_Nearest() {
	tree := exampleTree()

	hits, err := tree.Nearest([]float64{0.2, 0.1}, 2, distance.Euclidean[float64])
	if err != nil {
		log.Fatal(err)
	}
	for _, h := range hits {
		fmt.Printf("%s %.3f\n", h.Payload, h.Distance)
	}
	// Output:
	// Aachen 0.224
	// Bonn 1.204
}

// ExampleKdTree_WithinCount counts records inside a radius.
func ExampleKdTree_WithinCount() {
	tree := exampleTree()

	n, err := tree.WithinCount([]float64{1, 1}, 2, distance.SquaredEuclidean[float64])
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(n)
	// Output: 3
}

// ExampleKdTree_BoundingBox runs an axis-aligned range query.
func ExampleKdTree_BoundingBox() {
	tree := exampleTree()

	hits, err := tree.BoundingBox([]float64{1, 1}, []float64{2, 5})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(hits))
	// Output: 2
}

// ExampleKdTree_IterNearest consumes results lazily and stops early.
func ExampleKdTree_IterNearest() {
	tree := exampleTree()

	it, err := tree.IterNearest([]float64{3, 3}, distance.Manhattan[float64])
	if err != nil {
		log.Fatal(err)
	}
	for d, name := range it.All() {
		if d > 2 {
			break
		}
		fmt.Println(name, d)
	}
	// Output:
	// Dortmund 0
	// Cologne 2
}

// ExampleKdTree_Save persists a tree with ZSTD compression and loads it back.
func ExampleKdTree_Save() {
	tree := exampleTree()

	var buf bytes.Buffer
	err := tree.Save(&buf, func(o *kdtree.SaveOptions) {
		o.Codec = codec.JSON{}
		o.Compression = codec.CompressionZSTD
	})
	if err != nil {
		log.Fatal(err)
	}

	loaded, err := kdtree.Load[float64, string](&buf)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(loaded.Size())
	// Output: 4
}

// ExampleKdTree_Remove deletes a record by point and payload.
func ExampleKdTree_Remove() {
	tree := exampleTree()

	n, err := tree.Remove([]float64{1, 1}, "Bonn")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(n, tree.Size())
	// Output: 1 3
}
