package drawitems

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter"
)

// Minimum on-screen distance between grid lines in pixels
const minGridPixels = 8.0

// Grid fills the background and draws grid lines over the visible area.
// When lines would be closer than a few pixels the spacing is multiplied
// by ten until they are not.
type Grid struct {
	Spacing    float64 // User units between lines
	Background painter.Color
	Color      painter.Color
}

// NewGrid creates a grid with the default viewer colours
func NewGrid(spacing float64) *Grid {
	return &Grid{
		Spacing:    spacing,
		Background: painter.RGB(0, 0.1, 0),
		Color:      painter.Color{R: 0.3, G: 0.3, B: 0.3, A: 0.6},
	}
}

// BoundingBox is empty; the grid is not spatially indexed
func (g *Grid) BoundingBox() geo.Area { return geo.EmptyArea() }

// EffectiveSpacing returns the spacing actually drawn at the given scale
func (g *Grid) EffectiveSpacing(scale float64) float64 {
	spacing := g.Spacing
	if spacing <= 0 || scale <= 0 {
		return 0
	}
	for spacing*scale < minGridPixels {
		spacing *= 10
	}
	return spacing
}

func (g *Grid) Draw(p painter.Painter, opts *DrawOptions, visible geo.Area) {
	b := g.Background
	p.Clear(b.R, b.G, b.B, b.A)

	spacing := g.EffectiveSpacing(p.ScaleFactor())
	if spacing == 0 || visible.IsEmpty() {
		return
	}

	p.Save()
	defer p.Restore()
	painter.SourceColor(p, g.Color)
	p.LineWidth(0)
	p.LineWidthCompensation(1)

	for x := math.Floor(visible.MinP.X/spacing) * spacing; x <= visible.MaxP.X; x += spacing {
		p.MoveTo(x, visible.MinP.Y)
		p.LineTo(x, visible.MaxP.Y)
	}
	for y := math.Floor(visible.MinP.Y/spacing) * spacing; y <= visible.MaxP.Y; y += spacing {
		p.MoveTo(visible.MinP.X, y)
		p.LineTo(visible.MaxP.X, y)
	}
	p.Stroke()
}

// Cursor draws a crosshair at a user-space position
type Cursor struct {
	Position geo.Coordinate
	Size     float64 // Half arm length in device pixels
	Color    painter.Color
	Hidden   bool
}

// NewCursor creates a hidden cursor
func NewCursor() *Cursor {
	return &Cursor{
		Size:   12,
		Color:  painter.RGB(1, 1, 1),
		Hidden: true,
	}
}

// MoveTo shows the cursor at pos
func (c *Cursor) MoveTo(pos geo.Coordinate) {
	c.Position = pos
	c.Hidden = false
}

// BoundingBox is empty; overlays are not spatially indexed
func (c *Cursor) BoundingBox() geo.Area { return geo.EmptyArea() }

func (c *Cursor) Draw(p painter.Painter, opts *DrawOptions, visible geo.Area) {
	if c.Hidden || !visible.Contains(c.Position) {
		return
	}
	arm, _ := p.DeviceToUserDistance(c.Size, 0)
	arm = math.Abs(arm)

	p.Save()
	defer p.Restore()
	painter.SourceColor(p, c.Color)
	p.LineWidth(0)
	p.LineWidthCompensation(1)

	x, y := c.Position.X, c.Position.Y
	p.MoveTo(x-arm, y)
	p.LineTo(x+arm, y)
	p.MoveTo(x, y-arm)
	p.LineTo(x, y+arm)
	p.Stroke()
}
