// Package quadtree implements a region quad tree over items with an
// axis-aligned bounding box.
//
// Items are addressed by a comparable key. An item is stored in the
// deepest node whose area fully contains its bounding box, so items that
// straddle a split line stay in the parent. Removal never collapses
// nodes; Optimise rebuilds the tree around the current content and is
// meant to be called at batch boundaries.
package quadtree

import (
	"sort"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

const (
	DefaultCapacity = 8
	DefaultMaxDepth = 12
)

// Bounded is anything with a bounding box
type Bounded interface {
	BoundingBox() geo.Area
}

// Options tunes node splitting
type Options struct {
	Capacity int // Items a leaf holds before it splits
	MaxDepth int // Leaves at this depth never split
}

func (o Options) withDefaults() Options {
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

type entry[K comparable, V Bounded] struct {
	key   K
	value V
	box   geo.Area
	seq   uint64
}

type node[K comparable, V Bounded] struct {
	area     geo.Area
	depth    int
	entries  []*entry[K, V]
	children *[4]*node[K, V]
}

// Tree is a quad tree keyed by K. The zero value is not usable; call New.
type Tree[K comparable, V Bounded] struct {
	opts  Options
	root  *node[K, V]
	index map[K]*node[K, V]
	seq   uint64
}

// New creates an empty tree. Its root area is sized on the first insert.
func New[K comparable, V Bounded](opts Options) *Tree[K, V] {
	t := &Tree[K, V]{opts: opts.withDefaults()}
	t.reset(geo.EmptyArea())
	return t
}

func (t *Tree[K, V]) reset(area geo.Area) {
	t.root = &node[K, V]{area: area}
	t.index = make(map[K]*node[K, V])
}

// Len returns the number of stored items
func (t *Tree[K, V]) Len() int {
	return len(t.index)
}

// Area returns the area covered by the root node
func (t *Tree[K, V]) Area() geo.Area {
	return t.root.area
}

// Insert stores value under key, replacing any previous value for key
func (t *Tree[K, V]) Insert(key K, value V) {
	t.Remove(key)

	box := value.BoundingBox()
	if !t.root.area.ContainsArea(box) {
		t.grow(box)
	}

	t.seq++
	t.insert(&entry[K, V]{key: key, value: value, box: box, seq: t.seq})
}

func (t *Tree[K, V]) insert(e *entry[K, V]) {
	n := t.root
	for n.children != nil {
		child := n.childFor(e.box)
		if child == nil {
			break
		}
		n = child
	}
	n.entries = append(n.entries, e)
	t.index[e.key] = n

	if n.children == nil && len(n.entries) > t.opts.Capacity && n.depth < t.opts.MaxDepth {
		t.split(n)
	}
}

// childFor returns the child fully containing box, or nil
func (n *node[K, V]) childFor(box geo.Area) *node[K, V] {
	for _, child := range n.children {
		if child.area.ContainsArea(box) {
			return child
		}
	}
	return nil
}

func (t *Tree[K, V]) split(n *node[K, V]) {
	var children [4]*node[K, V]
	for i, q := range n.area.Quadrants() {
		children[i] = &node[K, V]{area: q, depth: n.depth + 1}
	}
	n.children = &children

	kept := n.entries[:0]
	for _, e := range n.entries {
		child := n.childFor(e.box)
		if child == nil {
			kept = append(kept, e)
			continue
		}
		child.entries = append(child.entries, e)
		t.index[e.key] = child
	}
	n.entries = kept

	for _, child := range n.children {
		if len(child.entries) > t.opts.Capacity && child.depth < t.opts.MaxDepth {
			t.split(child)
		}
	}
}

// grow rebuilds the tree around an area that also covers box
func (t *Tree[K, V]) grow(box geo.Area) {
	t.rebuild(t.root.area.Merge(box))
}

// rebuild reinserts every entry into a fresh root covering area. The root
// is padded so that degenerate and edge-touching boxes still fit.
func (t *Tree[K, V]) rebuild(area geo.Area) {
	entries := t.entries()

	pad := max(area.Width(), area.Height()) * 0.05
	if pad == 0 {
		pad = 1
	}
	t.reset(area.Increase(pad))

	for _, e := range entries {
		t.insert(e)
	}
}

// entries returns every entry in insertion order
func (t *Tree[K, V]) entries() []*entry[K, V] {
	out := make([]*entry[K, V], 0, len(t.index))
	t.root.walk(func(e *entry[K, V]) { out = append(out, e) })
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (n *node[K, V]) walk(fn func(*entry[K, V])) {
	for _, e := range n.entries {
		fn(e)
	}
	if n.children != nil {
		for _, child := range n.children {
			child.walk(fn)
		}
	}
}

// Remove deletes the item stored under key and reports whether it existed
func (t *Tree[K, V]) Remove(key K) bool {
	n, ok := t.index[key]
	if !ok {
		return false
	}
	for i, e := range n.entries {
		if e.key == key {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			break
		}
	}
	delete(t.index, key)
	return true
}

// Get returns the item stored under key
func (t *Tree[K, V]) Get(key K) (V, bool) {
	n, ok := t.index[key]
	if ok {
		for _, e := range n.entries {
			if e.key == key {
				return e.value, true
			}
		}
	}
	var zero V
	return zero, false
}

// Retrieve returns the items whose bounding box intersects area, in
// insertion order
func (t *Tree[K, V]) Retrieve(area geo.Area) []V {
	var hits []*entry[K, V]
	t.root.retrieve(area, &hits)
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })

	out := make([]V, len(hits))
	for i, e := range hits {
		out[i] = e.value
	}
	return out
}

func (n *node[K, V]) retrieve(area geo.Area, hits *[]*entry[K, V]) {
	for _, e := range n.entries {
		if e.box.Intersects(area) {
			*hits = append(*hits, e)
		}
	}
	if n.children == nil {
		return
	}
	for _, child := range n.children {
		if child.area.Intersects(area) {
			child.retrieve(area, hits)
		}
	}
}

// Bounds returns the union of every stored bounding box, or the empty
// area when the tree holds nothing
func (t *Tree[K, V]) Bounds() geo.Area {
	box := geo.EmptyArea()
	t.root.walk(func(e *entry[K, V]) { box = box.Merge(e.box) })
	return box
}

// All returns every item in insertion order
func (t *Tree[K, V]) All() []V {
	entries := t.entries()
	out := make([]V, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}

// Walk calls fn for every item in insertion order until fn returns false
func (t *Tree[K, V]) Walk(fn func(K, V) bool) {
	for _, e := range t.entries() {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Optimise rebuilds the tree sized to the current content. An empty tree
// is reset to an unsized root.
func (t *Tree[K, V]) Optimise() {
	bounds := t.Bounds()
	if bounds.IsEmpty() {
		t.reset(geo.EmptyArea())
		return
	}
	t.rebuild(bounds)
}

// Clear removes every item
func (t *Tree[K, V]) Clear() {
	t.reset(geo.EmptyArea())
}

// WalkNodes calls fn for every node area, parents before children
func (t *Tree[K, V]) WalkNodes(fn func(area geo.Area, depth int)) {
	var visit func(n *node[K, V])
	visit = func(n *node[K, V]) {
		fn(n.area, n.depth)
		if n.children != nil {
			for _, child := range n.children {
				visit(child)
			}
		}
	}
	visit(t.root)
}

// Stats describes the tree shape
type Stats struct {
	Nodes    int
	Depth    int
	MaxItems int // Largest number of items held by one node
}

// Stats walks the node structure
func (t *Tree[K, V]) Stats() Stats {
	var s Stats
	var visit func(n *node[K, V])
	visit = func(n *node[K, V]) {
		s.Nodes++
		s.Depth = max(s.Depth, n.depth)
		s.MaxItems = max(s.MaxItems, len(n.entries))
		if n.children != nil {
			for _, child := range n.children {
				visit(child)
			}
		}
	}
	visit(t.root)
	return s
}
