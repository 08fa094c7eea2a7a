package entity

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

// Line is a straight segment between two points
type Line struct {
	Base
	start geo.Coordinate
	end   geo.Coordinate
}

// LineBuilder collects the fields of a Line
type LineBuilder struct {
	Common
	Start geo.Coordinate
	End   geo.Coordinate
}

// Build creates the line
func (b LineBuilder) Build() (*Line, error) {
	if b.Start.Equal(b.End, geo.Tolerance) {
		return nil, fmt.Errorf("line from %s to itself: %w", b.Start, ErrInvalidGeometry)
	}
	return &Line{Base: b.Common.base(), start: b.Start, end: b.End}, nil
}

// NewLine creates a line on the default layer with a fresh id
func NewLine(start, end geo.Coordinate) (*Line, error) {
	return LineBuilder{Start: start, End: end}.Build()
}

// Kind returns KindLine
func (l *Line) Kind() Kind { return KindLine }

// Start returns the first end point
func (l *Line) Start() geo.Coordinate { return l.start }

// End returns the second end point
func (l *Line) End() geo.Coordinate { return l.end }

// Length returns the distance between the end points
func (l *Line) Length() float64 { return l.start.DistanceTo(l.end) }

func (l *Line) with(base Base, start, end geo.Coordinate) *Line {
	return &Line{Base: base, start: start, end: end}
}

func (l *Line) Move(offset geo.Coordinate) Entity {
	return l.with(l.Base, l.start.Add(offset), l.end.Add(offset))
}

func (l *Line) Copy(offset geo.Coordinate) Entity {
	return l.with(l.Base.renewed(), l.start.Add(offset), l.end.Add(offset))
}

func (l *Line) Rotate(center geo.Coordinate, angle float64) Entity {
	return l.with(l.Base, l.start.Rotate(center, angle), l.end.Rotate(center, angle))
}

func (l *Line) Scale(center, factor geo.Coordinate) Entity {
	return l.with(l.Base, l.start.Scale(center, factor), l.end.Scale(center, factor))
}

func (l *Line) Mirror(axis1, axis2 geo.Coordinate) Entity {
	return l.with(l.Base, l.start.Mirror(axis1, axis2), l.end.Mirror(axis1, axis2))
}

func (l *Line) Modify(layer string, metaInfo *meta.MetaInfo, block string) Entity {
	return l.with(l.Base.modified(layer, metaInfo, block), l.start, l.end)
}

func (l *Line) BoundingBox() geo.Area {
	return geo.NewArea(l.start, l.end)
}

func (l *Line) DragPoints() map[int]geo.Coordinate {
	return map[int]geo.Coordinate{
		0: l.start,
		1: l.end,
	}
}

func (l *Line) SetDragPoints(points map[int]geo.Coordinate) Entity {
	p, ok := dragPoint(points, 0, 1)
	if !ok || p[0].Equal(p[1], geo.Tolerance) {
		return l
	}
	return l.with(l.Base, p[0], p[1])
}

func (l *Line) AvailableProperties() Properties {
	return Properties{
		PropStart: l.start,
		PropEnd:   l.end,
	}
}

func (l *Line) SetProperties(props Properties) (Entity, error) {
	start, end := l.start, l.end

	if err := readProperty(props, KindLine, PropStart, &start); err != nil {
		return nil, err
	}
	if err := readProperty(props, KindLine, PropEnd, &end); err != nil {
		return nil, err
	}
	if start.Equal(end, geo.Tolerance) {
		return nil, fmt.Errorf("line from %s to itself: %w", start, ErrInvalidGeometry)
	}

	return l.with(l.Base, start, end), nil
}
