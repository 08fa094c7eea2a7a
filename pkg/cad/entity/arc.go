package entity

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

// Arc is a circular arc swept from startAngle to endAngle (radians),
// counter-clockwise unless ccw is false
type Arc struct {
	Base
	center     geo.Coordinate
	radius     float64
	startAngle float64
	endAngle   float64
	ccw        bool
}

// ArcBuilder collects the fields of an Arc
type ArcBuilder struct {
	Common
	Center     geo.Coordinate
	Radius     float64
	StartAngle float64
	EndAngle   float64
	CW         bool // Clockwise sweep; the zero value sweeps counter-clockwise
}

// Build creates the arc
func (b ArcBuilder) Build() (*Arc, error) {
	if b.Radius <= 0 {
		return nil, fmt.Errorf("arc radius %g: %w", b.Radius, ErrInvalidGeometry)
	}
	return &Arc{
		Base:       b.Common.base(),
		center:     b.Center,
		radius:     b.Radius,
		startAngle: geo.NormalizeAngle(b.StartAngle),
		endAngle:   geo.NormalizeAngle(b.EndAngle),
		ccw:        !b.CW,
	}, nil
}

// Kind returns KindArc
func (a *Arc) Kind() Kind { return KindArc }

// Center returns the arc center
func (a *Arc) Center() geo.Coordinate { return a.center }

// Radius returns the arc radius
func (a *Arc) Radius() float64 { return a.radius }

// StartAngle returns the start angle in radians
func (a *Arc) StartAngle() float64 { return a.startAngle }

// EndAngle returns the end angle in radians
func (a *Arc) EndAngle() float64 { return a.endAngle }

// CCW reports whether the arc sweeps counter-clockwise
func (a *Arc) CCW() bool { return a.ccw }

// StartPoint returns the coordinate at the start angle
func (a *Arc) StartPoint() geo.Coordinate { return a.pointAt(a.startAngle) }

// EndPoint returns the coordinate at the end angle
func (a *Arc) EndPoint() geo.Coordinate { return a.pointAt(a.endAngle) }

func (a *Arc) pointAt(angle float64) geo.Coordinate {
	return geo.Coord(a.center.X+a.radius*math.Cos(angle), a.center.Y+a.radius*math.Sin(angle))
}

// Sweep returns the swept angle, always in [0, 2π)
func (a *Arc) Sweep() float64 {
	if a.ccw {
		return geo.NormalizeAngle(a.endAngle - a.startAngle)
	}
	return geo.NormalizeAngle(a.startAngle - a.endAngle)
}

// containsAngle reports whether the direction angle lies on the arc
func (a *Arc) containsAngle(angle float64) bool {
	from := a.startAngle
	if !a.ccw {
		from = a.endAngle
	}
	return geo.NormalizeAngle(angle-from) <= a.Sweep()
}

func (a *Arc) with(base Base, center geo.Coordinate, radius, start, end float64, ccw bool) *Arc {
	return &Arc{
		Base:       base,
		center:     center,
		radius:     radius,
		startAngle: geo.NormalizeAngle(start),
		endAngle:   geo.NormalizeAngle(end),
		ccw:        ccw,
	}
}

func (a *Arc) Move(offset geo.Coordinate) Entity {
	return a.with(a.Base, a.center.Add(offset), a.radius, a.startAngle, a.endAngle, a.ccw)
}

func (a *Arc) Copy(offset geo.Coordinate) Entity {
	return a.with(a.Base.renewed(), a.center.Add(offset), a.radius, a.startAngle, a.endAngle, a.ccw)
}

func (a *Arc) Rotate(center geo.Coordinate, angle float64) Entity {
	return a.with(a.Base, a.center.Rotate(center, angle), a.radius,
		a.startAngle+angle, a.endAngle+angle, a.ccw)
}

// Scale scales the center per axis; the radius follows the X factor
func (a *Arc) Scale(center, factor geo.Coordinate) Entity {
	return a.with(a.Base, a.center.Scale(center, factor), a.radius*math.Abs(factor.X),
		a.startAngle, a.endAngle, a.ccw)
}

// Mirror reflects the arc. Start and end swap so the sweep direction is kept.
func (a *Arc) Mirror(axis1, axis2 geo.Coordinate) Entity {
	return a.with(a.Base, a.center.Mirror(axis1, axis2), a.radius,
		geo.MirrorAngle(a.endAngle, axis1, axis2),
		geo.MirrorAngle(a.startAngle, axis1, axis2),
		a.ccw)
}

func (a *Arc) Modify(layer string, metaInfo *meta.MetaInfo, block string) Entity {
	return a.with(a.Base.modified(layer, metaInfo, block), a.center, a.radius,
		a.startAngle, a.endAngle, a.ccw)
}

// BoundingBox covers both end points plus every axis extreme on the arc
func (a *Arc) BoundingBox() geo.Area {
	box := geo.NewArea(a.StartPoint(), a.EndPoint())
	for i := 0; i < 4; i++ {
		angle := float64(i) * math.Pi / 2
		if a.containsAngle(angle) {
			box = box.MergeCoordinate(a.pointAt(angle))
		}
	}
	return box
}

// DragPoints returns center (0), start point (1) and end point (2)
func (a *Arc) DragPoints() map[int]geo.Coordinate {
	return map[int]geo.Coordinate{
		0: a.center,
		1: a.StartPoint(),
		2: a.EndPoint(),
	}
}

func (a *Arc) SetDragPoints(points map[int]geo.Coordinate) Entity {
	p, ok := dragPoint(points, 0, 1, 2)
	if !ok {
		return a
	}
	radius := p[0].DistanceTo(p[1])
	if radius <= geo.Tolerance {
		return a
	}
	return a.with(a.Base, p[0], radius, p[0].AngleTo(p[1]), p[0].AngleTo(p[2]), a.ccw)
}

func (a *Arc) AvailableProperties() Properties {
	return Properties{
		PropCenter:     a.center,
		PropRadius:     a.radius,
		PropStartAngle: a.startAngle,
		PropEndAngle:   a.endAngle,
		PropCCW:        a.ccw,
	}
}

func (a *Arc) SetProperties(props Properties) (Entity, error) {
	center, radius := a.center, a.radius
	start, end, ccw := a.startAngle, a.endAngle, a.ccw

	if err := readProperty(props, KindArc, PropCenter, &center); err != nil {
		return nil, err
	}
	if err := readProperty(props, KindArc, PropRadius, &radius); err != nil {
		return nil, err
	}
	if err := readProperty(props, KindArc, PropStartAngle, &start); err != nil {
		return nil, err
	}
	if err := readProperty(props, KindArc, PropEndAngle, &end); err != nil {
		return nil, err
	}
	if err := readProperty(props, KindArc, PropCCW, &ccw); err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, fmt.Errorf("arc radius %g: %w", radius, ErrInvalidGeometry)
	}

	return a.with(a.Base, center, radius, start, end, ccw), nil
}
