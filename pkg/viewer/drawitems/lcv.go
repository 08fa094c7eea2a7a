package drawitems

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/entity"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter"
)

// LCVLine draws a line entity
type LCVLine struct {
	selection
	line *entity.Line
}

// NewLCVLine wraps l, unselected
func NewLCVLine(l *entity.Line) *LCVLine {
	return &LCVLine{line: l}
}

func (v *LCVLine) Entity() entity.Entity { return v.line }
func (v *LCVLine) BoundingBox() geo.Area { return v.line.BoundingBox() }

func (v *LCVLine) Draw(p painter.Painter, opts *DrawOptions, visible geo.Area) {
	opts.style(p, v.line, v.selected)
	defer p.Restore()

	start, end := v.line.Start(), v.line.End()
	p.MoveTo(start.X, start.Y)
	p.LineTo(end.X, end.Y)
	p.Stroke()
}

// LCVCircle draws a circle entity
type LCVCircle struct {
	selection
	circle *entity.Circle
}

// NewLCVCircle wraps c. Circles start out selected.
func NewLCVCircle(c *entity.Circle) *LCVCircle {
	return &LCVCircle{selection: selection{selected: true}, circle: c}
}

func (v *LCVCircle) Entity() entity.Entity { return v.circle }
func (v *LCVCircle) BoundingBox() geo.Area { return v.circle.BoundingBox() }

func (v *LCVCircle) Draw(p painter.Painter, opts *DrawOptions, visible geo.Area) {
	opts.style(p, v.circle, v.selected)
	defer p.Restore()

	center := v.circle.Center()
	p.Circle(center.X, center.Y, v.circle.Radius())
	p.Stroke()
}

// LCVArc draws an arc entity
type LCVArc struct {
	selection
	arc *entity.Arc
}

// NewLCVArc wraps a, unselected
func NewLCVArc(a *entity.Arc) *LCVArc {
	return &LCVArc{arc: a}
}

func (v *LCVArc) Entity() entity.Entity { return v.arc }
func (v *LCVArc) BoundingBox() geo.Area { return v.arc.BoundingBox() }

func (v *LCVArc) Draw(p painter.Painter, opts *DrawOptions, visible geo.Area) {
	opts.style(p, v.arc, v.selected)
	defer p.Restore()

	center := v.arc.Center()
	start, end := v.arc.StartAngle(), v.arc.EndAngle()
	if !v.arc.CCW() {
		start, end = end, start
	}
	p.Arc(center.X, center.Y, v.arc.Radius(), start, end)
	p.Stroke()
}
