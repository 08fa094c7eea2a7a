// Package painter defines the drawing capability the viewer renders into.
//
// A Painter is a device-sized surface with a user-space transform. Drawing
// calls take user coordinates; DeviceToUser and UserToDevice convert
// between the two spaces. Backends live in sub-packages.
package painter

import "github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"

// CacheType names the purpose of a cached painter surface
type CacheType int

const (
	Background CacheType = iota
	Document
	Drawing // Foreground overlays such as cursors
)

// CacheTypes lists the purposes in render order
var CacheTypes = []CacheType{Background, Document, Drawing}

func (c CacheType) String() string {
	switch c {
	case Background:
		return "background"
	case Document:
		return "document"
	case Drawing:
		return "drawing"
	}
	return "unknown"
}

// Color is an RGBA colour with components in 0.0-1.0
type Color = meta.Color

// RGB returns an opaque colour
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Painter is a drawing surface with a save/restore-able user transform
type Painter interface {
	// Clear fills the whole surface, ignoring the transform
	Clear(r, g, b, a float64)

	Scale(factor float64)
	Translate(dx, dy float64)
	Save()
	Restore()
	DeviceToUser(x, y float64) (float64, float64)
	DeviceToUserDistance(w, h float64) (float64, float64)
	UserToDevice(x, y float64) (float64, float64)
	// ScaleFactor returns the current user-to-device scale
	ScaleFactor() float64

	SourceRGB(r, g, b float64)
	SourceRGBA(r, g, b, a float64)
	// LineWidth sets the stroke width in user units
	LineWidth(width float64)
	// LineWidthCompensation adds a constant width in device pixels so
	// strokes stay visible when zoomed out
	LineWidthCompensation(width float64)

	MoveTo(x, y float64)
	LineTo(x, y float64)
	// Arc adds a counter-clockwise arc (angles in radians, user space)
	Arc(x, y, radius, startAngle, endAngle float64)
	Circle(x, y, radius float64)
	Rectangle(x, y, width, height float64)
	Stroke()
	Fill()

	// Close releases backend resources
	Close() error
}

// SourceColor sets the source from a Color
func SourceColor(p Painter, c Color) {
	p.SourceRGBA(c.R, c.G, c.B, c.A)
}

// Factory creates a painter for a device of the given size
type Factory func(width, height int) (Painter, error)

// Destructor releases a painter created by a Factory
type Destructor func(Painter)
