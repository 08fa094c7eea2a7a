package entity

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

// Point is a single marked location
type Point struct {
	Base
	location geo.Coordinate
}

// PointBuilder collects the fields of a Point
type PointBuilder struct {
	Common
	Location geo.Coordinate
}

// Build creates the point
func (b PointBuilder) Build() (*Point, error) {
	return &Point{Base: b.Common.base(), location: b.Location}, nil
}

// Kind returns KindPoint
func (p *Point) Kind() Kind { return KindPoint }

// Location returns the marked coordinate
func (p *Point) Location() geo.Coordinate { return p.location }

func (p *Point) with(base Base, location geo.Coordinate) *Point {
	return &Point{Base: base, location: location}
}

func (p *Point) Move(offset geo.Coordinate) Entity {
	return p.with(p.Base, p.location.Add(offset))
}

func (p *Point) Copy(offset geo.Coordinate) Entity {
	return p.with(p.Base.renewed(), p.location.Add(offset))
}

func (p *Point) Rotate(center geo.Coordinate, angle float64) Entity {
	return p.with(p.Base, p.location.Rotate(center, angle))
}

func (p *Point) Scale(center, factor geo.Coordinate) Entity {
	return p.with(p.Base, p.location.Scale(center, factor))
}

func (p *Point) Mirror(axis1, axis2 geo.Coordinate) Entity {
	return p.with(p.Base, p.location.Mirror(axis1, axis2))
}

func (p *Point) Modify(layer string, metaInfo *meta.MetaInfo, block string) Entity {
	return p.with(p.Base.modified(layer, metaInfo, block), p.location)
}

func (p *Point) BoundingBox() geo.Area {
	return geo.NewArea(p.location, p.location)
}

func (p *Point) DragPoints() map[int]geo.Coordinate {
	return map[int]geo.Coordinate{0: p.location}
}

func (p *Point) SetDragPoints(points map[int]geo.Coordinate) Entity {
	loc, ok := dragPoint(points, 0)
	if !ok {
		return p
	}
	return p.with(p.Base, loc[0])
}

func (p *Point) AvailableProperties() Properties {
	return Properties{PropLocation: p.location}
}

func (p *Point) SetProperties(props Properties) (Entity, error) {
	location := p.location
	if err := readProperty(props, KindPoint, PropLocation, &location); err != nil {
		return nil, err
	}
	return p.with(p.Base, location), nil
}
