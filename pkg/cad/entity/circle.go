package entity

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

// Circle is defined by a center and a radius
type Circle struct {
	Base
	center geo.Coordinate
	radius float64
}

// CircleBuilder collects the fields of a Circle
type CircleBuilder struct {
	Common
	Center geo.Coordinate
	Radius float64
}

// Build creates the circle
func (b CircleBuilder) Build() (*Circle, error) {
	if b.Radius <= 0 {
		return nil, fmt.Errorf("circle radius %g: %w", b.Radius, ErrInvalidGeometry)
	}
	return &Circle{Base: b.Common.base(), center: b.Center, radius: b.Radius}, nil
}

// NewCircle creates a circle on the default layer with a fresh id
func NewCircle(center geo.Coordinate, radius float64) (*Circle, error) {
	return CircleBuilder{Center: center, Radius: radius}.Build()
}

// Kind returns KindCircle
func (c *Circle) Kind() Kind { return KindCircle }

// Center returns the circle center
func (c *Circle) Center() geo.Coordinate { return c.center }

// Radius returns the circle radius
func (c *Circle) Radius() float64 { return c.radius }

func (c *Circle) with(base Base, center geo.Coordinate, radius float64) *Circle {
	return &Circle{Base: base, center: center, radius: radius}
}

func (c *Circle) Move(offset geo.Coordinate) Entity {
	return c.with(c.Base, c.center.Add(offset), c.radius)
}

func (c *Circle) Copy(offset geo.Coordinate) Entity {
	return c.with(c.Base.renewed(), c.center.Add(offset), c.radius)
}

func (c *Circle) Rotate(center geo.Coordinate, angle float64) Entity {
	return c.with(c.Base, c.center.Rotate(center, angle), c.radius)
}

// Scale scales the center per axis; the radius follows the X factor
func (c *Circle) Scale(center, factor geo.Coordinate) Entity {
	return c.with(c.Base, c.center.Scale(center, factor), c.radius*math.Abs(factor.X))
}

func (c *Circle) Mirror(axis1, axis2 geo.Coordinate) Entity {
	return c.with(c.Base, c.center.Mirror(axis1, axis2), c.radius)
}

func (c *Circle) Modify(layer string, metaInfo *meta.MetaInfo, block string) Entity {
	return c.with(c.Base.modified(layer, metaInfo, block), c.center, c.radius)
}

func (c *Circle) BoundingBox() geo.Area {
	return geo.NewArea(
		geo.Coord(c.center.X-c.radius, c.center.Y-c.radius),
		geo.Coord(c.center.X+c.radius, c.center.Y+c.radius),
	)
}

// DragPoints returns the center (0) and the east point on the circumference (1)
func (c *Circle) DragPoints() map[int]geo.Coordinate {
	return map[int]geo.Coordinate{
		0: c.center,
		1: c.center.Add(geo.Coord(c.radius, 0)),
	}
}

func (c *Circle) SetDragPoints(points map[int]geo.Coordinate) Entity {
	p, ok := dragPoint(points, 0, 1)
	if !ok {
		return c
	}
	radius := p[0].DistanceTo(p[1])
	if radius <= geo.Tolerance {
		return c
	}
	return c.with(c.Base, p[0], radius)
}

func (c *Circle) AvailableProperties() Properties {
	return Properties{
		PropCenter: c.center,
		PropRadius: c.radius,
	}
}

func (c *Circle) SetProperties(props Properties) (Entity, error) {
	center, radius := c.center, c.radius

	if err := readProperty(props, KindCircle, PropCenter, &center); err != nil {
		return nil, err
	}
	if err := readProperty(props, KindCircle, PropRadius, &radius); err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, fmt.Errorf("circle radius %g: %w", radius, ErrInvalidGeometry)
	}

	return c.with(c.Base, center, radius), nil
}
