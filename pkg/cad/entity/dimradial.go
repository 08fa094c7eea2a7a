package entity

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

// DimRadial is a radius dimension: definitionPoint is the arc center,
// definitionPoint2 the point on the curve, leader the leader length
type DimRadial struct {
	Base
	Dimension
	definitionPoint2 geo.Coordinate
	leader           float64
}

// DimRadialBuilder collects the fields of a DimRadial
type DimRadialBuilder struct {
	Common
	DimensionBuilder
	DefinitionPoint2 geo.Coordinate
	Leader           float64
}

// Build creates the radial dimension
func (b DimRadialBuilder) Build() (*DimRadial, error) {
	return &DimRadial{
		Base:             b.Common.base(),
		Dimension:        b.DimensionBuilder.dimension(),
		definitionPoint2: b.DefinitionPoint2,
		leader:           b.Leader,
	}, nil
}

// Kind returns KindDimRadial
func (d *DimRadial) Kind() Kind { return KindDimRadial }

// DefinitionPoint2 returns the point on the measured curve
func (d *DimRadial) DefinitionPoint2() geo.Coordinate { return d.definitionPoint2 }

// Leader returns the leader length
func (d *DimRadial) Leader() float64 { return d.leader }

// Radius returns the measured value
func (d *DimRadial) Radius() float64 {
	return d.definitionPoint.DistanceTo(d.definitionPoint2)
}

func (d *DimRadial) with(base Base, dim Dimension, p2 geo.Coordinate, leader float64) *DimRadial {
	return &DimRadial{Base: base, Dimension: dim, definitionPoint2: p2, leader: leader}
}

func (d *DimRadial) transform(base Base, fn func(geo.Coordinate) geo.Coordinate) *DimRadial {
	return d.with(base, d.Dimension.mapPoints(fn), fn(d.definitionPoint2), d.leader)
}

func (d *DimRadial) Move(offset geo.Coordinate) Entity {
	return d.transform(d.Base, func(p geo.Coordinate) geo.Coordinate { return p.Add(offset) })
}

func (d *DimRadial) Copy(offset geo.Coordinate) Entity {
	return d.transform(d.Base.renewed(), func(p geo.Coordinate) geo.Coordinate { return p.Add(offset) })
}

func (d *DimRadial) Rotate(center geo.Coordinate, angle float64) Entity {
	return d.transform(d.Base, func(p geo.Coordinate) geo.Coordinate { return p.Rotate(center, angle) })
}

func (d *DimRadial) Scale(center, factor geo.Coordinate) Entity {
	return d.transform(d.Base, func(p geo.Coordinate) geo.Coordinate { return p.Scale(center, factor) })
}

func (d *DimRadial) Mirror(axis1, axis2 geo.Coordinate) Entity {
	return d.transform(d.Base, func(p geo.Coordinate) geo.Coordinate { return p.Mirror(axis1, axis2) })
}

func (d *DimRadial) Modify(layer string, metaInfo *meta.MetaInfo, block string) Entity {
	return d.with(d.Base.modified(layer, metaInfo, block), d.Dimension, d.definitionPoint2, d.leader)
}

// BoundingBox spans middleOfText to definitionPoint2
func (d *DimRadial) BoundingBox() geo.Area {
	return geo.NewArea(d.middleOfText, d.definitionPoint2)
}

// DragPoints returns definitionPoint (0), middleOfText (1) and definitionPoint2 (2)
func (d *DimRadial) DragPoints() map[int]geo.Coordinate {
	return map[int]geo.Coordinate{
		0: d.definitionPoint,
		1: d.middleOfText,
		2: d.definitionPoint2,
	}
}

func (d *DimRadial) SetDragPoints(points map[int]geo.Coordinate) Entity {
	p, ok := dragPoint(points, 0, 1, 2)
	if !ok {
		return d
	}
	dim := d.Dimension
	dim.definitionPoint = p[0]
	dim.middleOfText = p[1]
	return d.with(d.Base, dim, p[2], d.leader)
}

func (d *DimRadial) AvailableProperties() Properties {
	props := Properties{}
	d.Dimension.properties(props)
	props[PropDefinitionPoint2] = d.definitionPoint2
	props[PropLeader] = d.leader
	return props
}

func (d *DimRadial) SetProperties(props Properties) (Entity, error) {
	dim, err := d.Dimension.setProperties(props, KindDimRadial)
	if err != nil {
		return nil, err
	}

	p2, leader := d.definitionPoint2, d.leader
	if err := readProperty(props, KindDimRadial, PropDefinitionPoint2, &p2); err != nil {
		return nil, err
	}
	if err := readProperty(props, KindDimRadial, PropLeader, &leader); err != nil {
		return nil, err
	}

	return d.with(d.Base, dim, p2, leader), nil
}
