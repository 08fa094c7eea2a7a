package renderer

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter"
)

// view is the zoom/pan applied on top of a painter's device setup:
// user-to-device = base * translate(tx, ty) * scale(s).
//
// Every cached painter receives the same translate/scale sequence, so the
// composition is tracked here and replayed onto painters created later.
type view struct {
	tx, ty float64
	scale  float64
}

func newView() view {
	return view{scale: 1}
}

// then records scale(factor) followed by translate(dx, dy), the
// translation given in the scaled user space
func (v *view) then(factor, dx, dy float64) {
	v.scale *= factor
	v.tx += v.scale * dx
	v.ty += v.scale * dy
}

// apply replays the view onto a painter still in its device setup state
func (v view) apply(p painter.Painter) {
	p.Translate(v.tx, v.ty)
	p.Scale(v.scale)
}

// fit returns the view that centres area on a device of the given size
// with 5% padding on each side, the scale clamped to [zoomMin, zoomMax].
// fresh must be a painter without any view applied.
func fit(fresh painter.Painter, area geo.Area, width, height int, zoomMin, zoomMax float64) (view, bool) {
	w, h := area.Width(), area.Height()
	if area.IsEmpty() || (w <= 0 && h <= 0) || width <= 0 || height <= 0 {
		return view{}, false
	}

	scale := math.Inf(1)
	if w > 0 {
		scale = float64(width) * 0.9 / w
	}
	if h > 0 {
		scale = math.Min(scale, float64(height)*0.9/h)
	}
	scale = math.Max(zoomMin, math.Min(zoomMax, scale))

	// Under the device setup alone, find the user point at the device
	// centre; the view must map area's centre there.
	bx, by := fresh.DeviceToUser(float64(width)/2, float64(height)/2)
	c := area.Center()
	return view{tx: bx - scale*c.X, ty: by - scale*c.Y, scale: scale}, true
}
