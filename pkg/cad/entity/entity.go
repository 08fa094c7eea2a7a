// Package entity implements the immutable CAD entities a document holds.
//
// Every entity satisfies the same edit contract: transforms (Move, Rotate,
// Scale, Mirror), classification edits (Modify), drag-point editing and
// generic property editing all return a new value and leave the receiver
// untouched. Identity survives every edit except Copy, which produces a
// logically distinct entity.
package entity

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

// ID is the stable identity of an entity
type ID = uuid.UUID

// NewID allocates a fresh entity identity
func NewID() ID {
	return uuid.New()
}

// Kind tags the concrete entity variant
type Kind int

const (
	KindUnknown Kind = iota
	KindPoint
	KindLine
	KindCircle
	KindArc
	KindDimRadial
)

// kindNames maps kinds to the names used in files and logs
var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindPoint:     "point",
	KindLine:      "line",
	KindCircle:    "circle",
	KindArc:       "arc",
	KindDimRadial: "dimradial",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Entity is the uniform contract shared by all entity kinds
type Entity interface {
	ID() ID
	Kind() Kind
	Layer() string
	MetaInfo() *meta.MetaInfo
	Block() string

	// Move translates every coordinate by offset, keeping the id
	Move(offset geo.Coordinate) Entity
	// Copy is Move with a fresh id
	Copy(offset geo.Coordinate) Entity
	Rotate(center geo.Coordinate, angle float64) Entity
	Scale(center, factor geo.Coordinate) Entity
	Mirror(axis1, axis2 geo.Coordinate) Entity
	// Modify replaces layer, meta info and block, keeping geometry and id
	Modify(layer string, metaInfo *meta.MetaInfo, block string) Entity

	BoundingBox() geo.Area

	// DragPoints returns the index-addressed control points
	DragPoints() map[int]geo.Coordinate
	// SetDragPoints rebuilds the entity from control points. If a required
	// index is missing the receiver is returned unchanged.
	SetDragPoints(points map[int]geo.Coordinate) Entity

	AvailableProperties() Properties
	// SetProperties rebuilds the entity from properties. Unknown keys are
	// ignored; a value of the wrong type yields a *PropertyTypeError.
	SetProperties(props Properties) (Entity, error)
}

// Base carries the identity and classification shared by every entity
type Base struct {
	id       ID
	layer    string
	metaInfo *meta.MetaInfo
	block    string
}

// Common is the classification part of every builder
type Common struct {
	ID       ID // Zero value allocates a new id
	Layer    string
	MetaInfo *meta.MetaInfo
	Block    string
}

func (c Common) base() Base {
	id := c.ID
	if id == uuid.Nil {
		id = NewID()
	}
	layer := c.Layer
	if layer == "" {
		layer = meta.DefaultLayer
	}
	return Base{id: id, layer: layer, metaInfo: c.MetaInfo, block: c.Block}
}

// ID returns the entity identity
func (b Base) ID() ID { return b.id }

// Layer returns the layer name
func (b Base) Layer() string { return b.layer }

// MetaInfo returns the shared meta information (may be nil)
func (b Base) MetaInfo() *meta.MetaInfo { return b.metaInfo }

// Block returns the block name ("" when not part of a block)
func (b Base) Block() string { return b.block }

// renewed returns a copy with a fresh id
func (b Base) renewed() Base {
	b.id = NewID()
	return b
}

func (b Base) modified(layer string, metaInfo *meta.MetaInfo, block string) Base {
	if layer == "" {
		layer = meta.DefaultLayer
	}
	return Base{id: b.id, layer: layer, metaInfo: metaInfo, block: block}
}

// dragPoint reads all required indices or reports a miss
func dragPoint(points map[int]geo.Coordinate, indices ...int) ([]geo.Coordinate, bool) {
	out := make([]geo.Coordinate, len(indices))
	for i, idx := range indices {
		p, ok := points[idx]
		if !ok {
			return nil, false
		}
		out[i] = p
	}
	return out, true
}
