package kdtree

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/hupe1980/kdtree/codec"
)

// Snapshot is a plain-data copy of a tree's structure, suitable for any
// encoder. FromSnapshot rebuilds the identical tree.
type Snapshot[A Float, T comparable] struct {
	Dimensions int                  `json:"dimensions"`
	Capacity   int                  `json:"capacity"`
	Root       *NodeSnapshot[A, T] `json:"root"`
}

// NodeSnapshot mirrors one node. Exactly one of Leaf and Stem is set.
// MinBounds and MaxBounds are nil for a node that never held a point.
type NodeSnapshot[A Float, T comparable] struct {
	Size      int                 `json:"size"`
	MinBounds []A                 `json:"min_bounds,omitempty"`
	MaxBounds []A                 `json:"max_bounds,omitempty"`
	Leaf      *LeafSnapshot[A, T] `json:"leaf,omitempty"`
	Stem      *StemSnapshot[A, T] `json:"stem,omitempty"`
}

// LeafSnapshot holds a leaf's points and their payloads, index-aligned.
type LeafSnapshot[A Float, T comparable] struct {
	Points   [][]A `json:"points"`
	Payloads []T   `json:"payloads"`
}

// StemSnapshot holds a split plane and both subtrees.
type StemSnapshot[A Float, T comparable] struct {
	SplitDimension int                 `json:"split_dimension"`
	SplitValue     A                   `json:"split_value"`
	Inclusive      bool                `json:"inclusive"`
	Left           *NodeSnapshot[A, T] `json:"left"`
	Right          *NodeSnapshot[A, T] `json:"right"`
}

// Snapshot returns a deep copy of the tree as plain data.
func (t *KdTree[A, T]) Snapshot() *Snapshot[A, T] {
	return &Snapshot[A, T]{
		Dimensions: t.dimensions,
		Capacity:   t.capacity,
		Root:       t.root.snapshot(),
	}
}

func (n *node[A, T]) snapshot() *NodeSnapshot[A, T] {
	ns := &NodeSnapshot[A, T]{Size: n.size}
	if n.filled() {
		ns.MinBounds = slices.Clone(n.minBounds)
		ns.MaxBounds = slices.Clone(n.maxBounds)
	}

	switch b := n.body.(type) {
	case *leaf[A, T]:
		ls := &LeafSnapshot[A, T]{
			Points:   make([][]A, len(b.points)),
			Payloads: slices.Clone(b.payloads),
		}
		for i, p := range b.points {
			ls.Points[i] = slices.Clone(p)
		}
		if ls.Payloads == nil {
			ls.Payloads = []T{}
		}
		ns.Leaf = ls
	case *stem[A, T]:
		ns.Stem = &StemSnapshot[A, T]{
			SplitDimension: b.splitDimension,
			SplitValue:     b.splitValue,
			Inclusive:      b.inclusive,
			Left:           b.left.snapshot(),
			Right:          b.right.snapshot(),
		}
	}
	return ns
}

// filled reports whether the node's box has ever been extended.
func (n *node[A, T]) filled() bool {
	return len(n.minBounds) > 0 && !math.IsInf(float64(n.minBounds[0]), 1)
}

// FromSnapshot validates s and rebuilds the tree it describes. Any violation
// of the tree's structural invariants yields an error wrapping
// ErrCorruptSnapshot. The snapshot is copied.
func FromSnapshot[A Float, T comparable](s *Snapshot[A, T], opts ...Option) (*KdTree[A, T], error) {
	if s == nil || s.Root == nil {
		return nil, corruptf("missing root")
	}
	if s.Dimensions < 0 {
		return nil, corruptf("negative dimensions %d", s.Dimensions)
	}

	if s.Capacity <= 0 && (s.Root.Leaf == nil || s.Root.Size != 0) {
		return nil, corruptf("capacity %d with a populated root", s.Capacity)
	}

	t := NewWithCapacity[A, T](s.Dimensions, s.Capacity, opts...)
	root, err := t.restore(s.Root, "root", nil, nil, nil)
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

// route is one stem on the path from the root, and the side taken.
type route[A Float, T comparable] struct {
	stem *stem[A, T]
	left bool
}

// restore rebuilds ns. lo and hi are the parent's bounds, nil at the root or
// below a node without bounds.
func (t *KdTree[A, T]) restore(ns *NodeSnapshot[A, T], path string, routes []route[A, T], lo, hi []A) (*node[A, T], error) {
	if ns == nil {
		return nil, corruptf("%s: missing node", path)
	}
	if (ns.Leaf == nil) == (ns.Stem == nil) {
		return nil, corruptf("%s: node must be exactly one of leaf or stem", path)
	}
	if ns.Size < 0 {
		return nil, corruptf("%s: negative size %d", path, ns.Size)
	}

	n := newNode[A, T](t.dimensions)
	switch {
	case ns.MinBounds == nil && ns.MaxBounds == nil:
		if t.dimensions > 0 && (ns.Size > 0 || ns.Stem != nil) {
			return nil, corruptf("%s: populated node without bounds", path)
		}
	default:
		if len(ns.MinBounds) != t.dimensions || len(ns.MaxBounds) != t.dimensions {
			return nil, corruptf("%s: bounds have %d/%d coordinates, want %d", path, len(ns.MinBounds), len(ns.MaxBounds), t.dimensions)
		}
		for d := range t.dimensions {
			minB, maxB := ns.MinBounds[d], ns.MaxBounds[d]
			if !isFinite(minB) || !isFinite(maxB) || minB > maxB {
				return nil, corruptf("%s: invalid bounds [%v, %v] in dimension %d", path, minB, maxB, d)
			}
			if lo != nil && (minB < lo[d] || maxB > hi[d]) {
				return nil, corruptf("%s: bounds exceed the parent's in dimension %d", path, d)
			}
		}
		copy(n.minBounds, ns.MinBounds)
		copy(n.maxBounds, ns.MaxBounds)
	}
	n.size = ns.Size

	if ls := ns.Leaf; ls != nil {
		if len(ls.Points) != len(ls.Payloads) || len(ls.Points) != ns.Size {
			return nil, corruptf("%s: size %d, %d points, %d payloads", path, ns.Size, len(ls.Points), len(ls.Payloads))
		}
		lf := &leaf[A, T]{
			points:   make([][]A, len(ls.Points)),
			payloads: slices.Clone(ls.Payloads),
		}
		for i, p := range ls.Points {
			if err := t.checkPoint(p); err != nil {
				return nil, fmt.Errorf("%w: %s: point %d: %w", ErrCorruptSnapshot, path, i, err)
			}
			if !n.mayContain(p) {
				return nil, corruptf("%s: point %d outside node bounds", path, i)
			}
			for _, r := range routes {
				if r.stem.routesLeft(p) != r.left {
					return nil, corruptf("%s: point %d on the wrong side of a split", path, i)
				}
			}
			lf.points[i] = slices.Clone(p)
		}
		n.body = lf
		return n, nil
	}

	ss := ns.Stem
	if ss.SplitDimension < 0 || ss.SplitDimension >= t.dimensions {
		return nil, corruptf("%s: split dimension %d out of range", path, ss.SplitDimension)
	}
	if !isFinite(ss.SplitValue) {
		return nil, corruptf("%s: non-finite split value", path)
	}
	st := &stem[A, T]{
		splitDimension: ss.SplitDimension,
		splitValue:     ss.SplitValue,
		inclusive:      ss.Inclusive,
	}

	var err error
	if st.left, err = t.restore(ss.Left, path+".left", append(slices.Clip(routes), route[A, T]{st, true}), ns.MinBounds, ns.MaxBounds); err != nil {
		return nil, err
	}
	if st.right, err = t.restore(ss.Right, path+".right", append(slices.Clip(routes), route[A, T]{st, false}), ns.MinBounds, ns.MaxBounds); err != nil {
		return nil, err
	}
	if st.left.size+st.right.size != ns.Size {
		return nil, corruptf("%s: size %d, children hold %d", path, ns.Size, st.left.size+st.right.size)
	}
	n.body = st
	return n, nil
}

func isFinite[A Float](v A) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

var snapshotMagic = [4]byte{'K', 'D', 'T', '1'}

// SaveOptions configures Save.
type SaveOptions struct {
	// Codec encodes the snapshot. Its name is recorded in the stream.
	Codec codec.Codec
	// Compression is applied to the encoded snapshot.
	Compression codec.Compression
}

// DefaultSaveOptions encodes with codec.Default and no compression.
var DefaultSaveOptions = SaveOptions{
	Codec:       codec.Default,
	Compression: codec.CompressionNone,
}

// Save writes the tree to w as a self-describing stream:
//
//	"KDT1" | codec name length (u8) | codec name | compression (u8) | block
//
// where block is [uncompressed size u32][compressed size u32][data].
// Payloads must be encodable by the chosen codec.
func (t *KdTree[A, T]) Save(w io.Writer, optFns ...func(o *SaveOptions)) error {
	o := DefaultSaveOptions
	for _, fn := range optFns {
		fn(&o)
	}
	if o.Codec == nil {
		o.Codec = codec.Default
	}
	if !o.Compression.Valid() {
		return fmt.Errorf("%w: %d", codec.ErrUnknownCompression, uint8(o.Compression))
	}
	name := o.Codec.Name()
	if len(name) == 0 || len(name) > math.MaxUint8 {
		return fmt.Errorf("kdtree: codec name %q must be 1-255 bytes", name)
	}

	data, err := o.Codec.Marshal(t.Snapshot())
	if err != nil {
		return fmt.Errorf("kdtree: encode snapshot: %w", err)
	}

	var header bytes.Buffer
	header.Write(snapshotMagic[:])
	header.WriteByte(uint8(len(name)))
	header.WriteString(name)
	header.WriteByte(uint8(o.Compression))
	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}
	if err := codec.WriteBlock(w, data, o.Compression); err != nil {
		return err
	}

	t.opts.logger.LogSnapshot(context.Background(), "saved", t.Size(), name, o.Compression.String())
	return nil
}

// Load reads a stream written by Save, selecting the codec recorded in it.
func Load[A Float, T comparable](r io.Reader, opts ...Option) (*KdTree[A, T], error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: reading magic: %w", ErrCorruptSnapshot, err)
	}
	if magic != snapshotMagic {
		return nil, corruptf("bad magic %q", magic[:])
	}

	var nameLen [1]byte
	if _, err := io.ReadFull(r, nameLen[:]); err != nil {
		return nil, fmt.Errorf("%w: reading codec name: %w", ErrCorruptSnapshot, err)
	}
	name := make([]byte, nameLen[0])
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, fmt.Errorf("%w: reading codec name: %w", ErrCorruptSnapshot, err)
	}
	c, err := codec.ByName(string(name))
	if err != nil {
		return nil, err
	}

	var comp [1]byte
	if _, err := io.ReadFull(r, comp[:]); err != nil {
		return nil, fmt.Errorf("%w: reading compression: %w", ErrCorruptSnapshot, err)
	}
	compression := codec.Compression(comp[0])
	if !compression.Valid() {
		return nil, fmt.Errorf("%w: %d", codec.ErrUnknownCompression, comp[0])
	}

	data, err := codec.ReadBlock(r, compression)
	if err != nil {
		if errors.Is(err, codec.ErrCorruptBlock) {
			return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
		}
		return nil, err
	}

	var s Snapshot[A, T]
	if err := c.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrCorruptSnapshot, err)
	}
	t, err := FromSnapshot(&s, opts...)
	if err != nil {
		return nil, err
	}

	t.opts.logger.LogSnapshot(context.Background(), "loaded", t.Size(), c.Name(), compression.String())
	return t, nil
}

