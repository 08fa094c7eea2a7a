// Package giopainter implements painter.Painter as a display list that is
// replayed into a Gio frame with Add.
//
// Paths are flattened to device-space polylines when they are stroked or
// filled, so a finished surface can be replayed every frame without
// repeating the user-space work.
package giopainter

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter"
)

// Device pixels per flattened arc segment
const segmentLength = 4.0

type subpath struct {
	points []f32.Point
	closed bool
}

type command struct {
	clear bool
	fill  bool
	color color.NRGBA
	width float32
	paths []subpath
}

// state is what Save pushes besides the transform
type state struct {
	source       color.NRGBA
	lineWidth    float64
	compensation float64
}

// Painter records drawing commands for a width x height device
type Painter struct {
	width, height int
	transform     *painter.Transform

	source       color.NRGBA
	lineWidth    float64
	compensation float64
	saved        []state

	path     []subpath
	commands []command
}

var _ painter.Painter = (*Painter)(nil)

// New creates a painter. With invertY the user Y axis points up.
func New(width, height int, invertY bool) *Painter {
	return &Painter{
		width:     width,
		height:    height,
		transform: painter.NewTransform(height, invertY),
		source:    color.NRGBA{A: 255},
		lineWidth: 1,
	}
}

// Factory returns a painter.Factory producing giopainters
func Factory(invertY bool) painter.Factory {
	return func(width, height int) (painter.Painter, error) {
		return New(width, height, invertY), nil
	}
}

func toNRGBA(r, g, b, a float64) color.NRGBA {
	c := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return color.NRGBA{R: c(r), G: c(g), B: c(b), A: c(a)}
}

// Clear drops everything recorded so far and fills the surface
func (p *Painter) Clear(r, g, b, a float64) {
	p.path = nil
	p.commands = append(p.commands[:0], command{clear: true, color: toNRGBA(r, g, b, a)})
}

func (p *Painter) Scale(factor float64)     { p.transform.Scale(factor) }
func (p *Painter) Translate(dx, dy float64) { p.transform.Translate(dx, dy) }

func (p *Painter) Save() {
	p.transform.Save()
	p.saved = append(p.saved, state{source: p.source, lineWidth: p.lineWidth, compensation: p.compensation})
}

func (p *Painter) Restore() {
	p.transform.Restore()
	if n := len(p.saved); n > 0 {
		st := p.saved[n-1]
		p.source, p.lineWidth, p.compensation = st.source, st.lineWidth, st.compensation
		p.saved = p.saved[:n-1]
	}
}

func (p *Painter) DeviceToUser(x, y float64) (float64, float64) {
	return p.transform.DeviceToUser(x, y)
}

func (p *Painter) DeviceToUserDistance(w, h float64) (float64, float64) {
	return p.transform.DeviceToUserDistance(w, h)
}

func (p *Painter) UserToDevice(x, y float64) (float64, float64) {
	return p.transform.UserToDevice(x, y)
}

func (p *Painter) ScaleFactor() float64 { return p.transform.ScaleFactor() }

func (p *Painter) SourceRGB(r, g, b float64)     { p.source = toNRGBA(r, g, b, 1) }
func (p *Painter) SourceRGBA(r, g, b, a float64) { p.source = toNRGBA(r, g, b, a) }

func (p *Painter) LineWidth(width float64)             { p.lineWidth = width }
func (p *Painter) LineWidthCompensation(width float64) { p.compensation = width }

func (p *Painter) devicePoint(x, y float64) f32.Point {
	dx, dy := p.transform.UserToDevice(x, y)
	return f32.Pt(float32(dx), float32(dy))
}

func (p *Painter) MoveTo(x, y float64) {
	p.path = append(p.path, subpath{points: []f32.Point{p.devicePoint(x, y)}})
}

func (p *Painter) LineTo(x, y float64) {
	if len(p.path) == 0 {
		p.MoveTo(x, y)
		return
	}
	last := &p.path[len(p.path)-1]
	last.points = append(last.points, p.devicePoint(x, y))
}

// flatten returns the user-space points of an arc as device points
func (p *Painter) flatten(x, y, radius, startAngle, endAngle float64) []f32.Point {
	for endAngle < startAngle {
		endAngle += 2 * math.Pi
	}
	sweep := endAngle - startAngle
	length := p.transform.UserToDeviceDistance(radius) * sweep
	n := int(math.Ceil(length / segmentLength))
	n = max(8, min(n, 720))

	points := make([]f32.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		a := startAngle + sweep*float64(i)/float64(n)
		points = append(points, p.devicePoint(x+radius*math.Cos(a), y+radius*math.Sin(a)))
	}
	return points
}

func (p *Painter) Arc(x, y, radius, startAngle, endAngle float64) {
	p.path = append(p.path, subpath{points: p.flatten(x, y, radius, startAngle, endAngle)})
}

func (p *Painter) Circle(x, y, radius float64) {
	points := p.flatten(x, y, radius, 0, 2*math.Pi)
	p.path = append(p.path, subpath{points: points[:len(points)-1], closed: true})
}

func (p *Painter) Rectangle(x, y, width, height float64) {
	p.path = append(p.path, subpath{
		points: []f32.Point{
			p.devicePoint(x, y),
			p.devicePoint(x+width, y),
			p.devicePoint(x+width, y+height),
			p.devicePoint(x, y+height),
		},
		closed: true,
	})
}

func (p *Painter) Stroke() {
	width := p.transform.UserToDeviceDistance(p.lineWidth) + p.compensation
	p.finish(command{color: p.source, width: float32(width)})
}

func (p *Painter) Fill() {
	p.finish(command{fill: true, color: p.source})
}

func (p *Painter) finish(cmd command) {
	if len(p.path) == 0 {
		return
	}
	cmd.paths = p.path
	p.path = nil
	p.commands = append(p.commands, cmd)
}

// Len returns the number of recorded commands, the initial clear included
func (p *Painter) Len() int {
	return len(p.commands)
}

// Add replays the recorded commands into ops
func (p *Painter) Add(ops *op.Ops) {
	for _, cmd := range p.commands {
		switch {
		case cmd.clear:
			if cmd.color.A == 0 {
				continue
			}
			paint.FillShape(ops, cmd.color, clip.Rect{Max: image.Pt(p.width, p.height)}.Op())
		case cmd.fill:
			paint.FillShape(ops, cmd.color, clip.Outline{Path: buildPath(ops, cmd.paths)}.Op())
		default:
			paint.FillShape(ops, cmd.color, clip.Stroke{Path: buildPath(ops, cmd.paths), Width: cmd.width}.Op())
		}
	}
}

func buildPath(ops *op.Ops, paths []subpath) clip.PathSpec {
	var path clip.Path
	path.Begin(ops)
	for _, sp := range paths {
		if len(sp.points) == 0 {
			continue
		}
		path.MoveTo(sp.points[0])
		for _, pt := range sp.points[1:] {
			path.LineTo(pt)
		}
		if sp.closed {
			path.Close()
		}
	}
	return path.End()
}

// Close drops the display list
func (p *Painter) Close() error {
	p.commands = nil
	p.path = nil
	return nil
}
