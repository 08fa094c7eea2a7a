// Package ggpainter implements painter.Painter on a CPU raster surface
// provided by github.com/gogpu/gg.
//
// The gg context keeps an identity transform; points are mapped to device
// space here so that stroke widths stay in device pixels.
package ggpainter

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/rs/zerolog"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter"
)

// Options configures a Painter
type Options struct {
	InvertY bool // User Y axis points up
	Logger  zerolog.Logger
}

// Painter draws into a gg.Context
type Painter struct {
	ctx       *gg.Context
	transform *painter.Transform
	logger    zerolog.Logger

	source       gg.RGBA
	lineWidth    float64
	compensation float64
	saved        []state
}

// state is the part of the drawing state kept outside the gg context
type state struct {
	source       gg.RGBA
	lineWidth    float64
	compensation float64
}

var _ painter.Painter = (*Painter)(nil)

// New creates a painter with a transparent width x height surface
func New(width, height int, opts Options) (*Painter, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid device size %dx%d", width, height)
	}
	p := &Painter{
		ctx:       gg.NewContext(width, height),
		transform: painter.NewTransform(height, opts.InvertY),
		logger:    opts.Logger,
		lineWidth: 1,
	}
	p.SourceRGBA(0, 0, 0, 1)
	return p, nil
}

// Factory returns a painter.Factory producing ggpainters
func Factory(opts Options) painter.Factory {
	return func(width, height int) (painter.Painter, error) {
		return New(width, height, opts)
	}
}

// Destroy is the painter.Destructor matching Factory
func Destroy(p painter.Painter) {
	if err := p.Close(); err != nil {
		if gp, ok := p.(*Painter); ok {
			gp.logger.Warn().Err(err).Msg("close painter")
		}
	}
}

func (p *Painter) Clear(r, g, b, a float64) {
	p.ctx.ClearPath()
	p.ctx.ClearWithColor(gg.RGBA{R: r, G: g, B: b, A: a})
}

func (p *Painter) Scale(factor float64)     { p.transform.Scale(factor) }
func (p *Painter) Translate(dx, dy float64) { p.transform.Translate(dx, dy) }

// Save pushes the transform, source colour and line widths
func (p *Painter) Save() {
	p.transform.Save()
	p.saved = append(p.saved, state{source: p.source, lineWidth: p.lineWidth, compensation: p.compensation})
}

// Restore pops what Save pushed. Unbalanced calls are ignored.
func (p *Painter) Restore() {
	p.transform.Restore()
	n := len(p.saved)
	if n == 0 {
		return
	}
	st := p.saved[n-1]
	p.saved = p.saved[:n-1]
	p.lineWidth, p.compensation = st.lineWidth, st.compensation
	p.SourceRGBA(st.source.R, st.source.G, st.source.B, st.source.A)
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

func (p *Painter) SourceRGB(r, g, b float64) { p.SourceRGBA(r, g, b, 1) }

func (p *Painter) SourceRGBA(r, g, b, a float64) {
	p.source = gg.RGBA{R: r, G: g, B: b, A: a}
	p.ctx.SetRGBA(r, g, b, a)
}

func (p *Painter) LineWidth(width float64)             { p.lineWidth = width }
func (p *Painter) LineWidthCompensation(width float64) { p.compensation = width }

func (p *Painter) MoveTo(x, y float64) {
	p.ctx.MoveTo(p.transform.UserToDevice(x, y))
}

func (p *Painter) LineTo(x, y float64) {
	p.ctx.LineTo(p.transform.UserToDevice(x, y))
}

func (p *Painter) Arc(x, y, radius, startAngle, endAngle float64) {
	cx, cy := p.transform.UserToDevice(x, y)
	r := p.transform.UserToDeviceDistance(radius)

	// Device angles follow the matrix; a mirrored matrix runs the arc the
	// other way round, so the end becomes the start.
	a1, a2 := startAngle, endAngle
	if p.transform.Flipped() {
		a1, a2 = -endAngle, -startAngle
	}
	for a2 < a1 {
		a2 += 2 * math.Pi
	}

	p.ctx.MoveTo(cx+r*math.Cos(a1), cy+r*math.Sin(a1))
	p.ctx.DrawArc(cx, cy, r, a1, a2)
}

func (p *Painter) Circle(x, y, radius float64) {
	cx, cy := p.transform.UserToDevice(x, y)
	p.ctx.DrawCircle(cx, cy, p.transform.UserToDeviceDistance(radius))
}

func (p *Painter) Rectangle(x, y, width, height float64) {
	x1, y1 := p.transform.UserToDevice(x, y)
	x2, y2 := p.transform.UserToDevice(x+width, y+height)
	p.ctx.DrawRectangle(math.Min(x1, x2), math.Min(y1, y2), math.Abs(x2-x1), math.Abs(y2-y1))
}

// DeviceLineWidth returns the stroke width in pixels for the current state
func (p *Painter) DeviceLineWidth() float64 {
	return p.transform.UserToDeviceDistance(p.lineWidth) + p.compensation
}

func (p *Painter) Stroke() {
	p.ctx.SetLineWidth(p.DeviceLineWidth())
	if err := p.ctx.Stroke(); err != nil {
		p.logger.Debug().Err(err).Msg("stroke")
	}
}

func (p *Painter) Fill() {
	if err := p.ctx.Fill(); err != nil {
		p.logger.Debug().Err(err).Msg("fill")
	}
}

// Image returns the rendered surface
func (p *Painter) Image() image.Image {
	return p.ctx.Image()
}

// Width returns the device width in pixels
func (p *Painter) Width() int { return p.ctx.Width() }

// Height returns the device height in pixels
func (p *Painter) Height() int { return p.ctx.Height() }

// SavePNG writes the surface to a PNG file
func (p *Painter) SavePNG(path string) error {
	if err := p.ctx.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// EncodePNG writes the surface as PNG to w
func (p *Painter) EncodePNG(w io.Writer) error {
	return p.ctx.EncodePNG(w)
}

func (p *Painter) Close() error {
	return p.ctx.Close()
}
