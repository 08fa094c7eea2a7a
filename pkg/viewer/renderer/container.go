package renderer

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/entity"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/quadtree"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/drawitems"
)

// EntityContainer is the per-viewer spatial index of drawable entities
type EntityContainer struct {
	tree *quadtree.Tree[entity.ID, drawitems.EntityItem]
}

// NewEntityContainer creates an empty container
func NewEntityContainer(opts quadtree.Options) *EntityContainer {
	return &EntityContainer{tree: quadtree.New[entity.ID, drawitems.EntityItem](opts)}
}

// Insert adds item, replacing any item for the same entity id
func (c *EntityContainer) Insert(item drawitems.EntityItem) {
	c.tree.Insert(item.Entity().ID(), item)
}

// Remove drops the item wrapping e and reports whether there was one
func (c *EntityContainer) Remove(e entity.Entity) bool {
	return c.tree.Remove(e.ID())
}

// Item returns the item wrapping the entity with the given id
func (c *EntityContainer) Item(id entity.ID) (drawitems.EntityItem, bool) {
	return c.tree.Get(id)
}

// Bounds returns the union of all item boxes; empty when there are none
func (c *EntityContainer) Bounds() geo.Area {
	return c.tree.Bounds()
}

// Optimise rebuilds the spatial partitioning
func (c *EntityContainer) Optimise() {
	c.tree.Optimise()
}

// Retrieve returns the items intersecting area
func (c *EntityContainer) Retrieve(area geo.Area) []drawitems.EntityItem {
	return c.tree.Retrieve(area)
}

// All returns every item in insertion order
func (c *EntityContainer) All() []drawitems.EntityItem {
	return c.tree.All()
}

// Len returns the number of items
func (c *EntityContainer) Len() int {
	return c.tree.Len()
}

// Walk visits every item until fn returns false
func (c *EntityContainer) Walk(fn func(drawitems.EntityItem) bool) {
	c.tree.Walk(func(_ entity.ID, item drawitems.EntityItem) bool {
		return fn(item)
	})
}

// WalkNodes visits the quad tree node areas
func (c *EntityContainer) WalkNodes(fn func(area geo.Area, depth int)) {
	c.tree.WalkNodes(fn)
}

// Stats describes the quad tree shape
func (c *EntityContainer) Stats() quadtree.Stats {
	return c.tree.Stats()
}
