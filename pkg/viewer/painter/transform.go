package painter

import (
	"github.com/gogpu/gg"
)

// Transform tracks the user-to-device matrix of a painter together with a
// save/restore stack. Scale and Translate act in user space, so they are
// applied before the existing matrix.
type Transform struct {
	m     gg.Matrix
	stack []gg.Matrix
}

// NewTransform creates an identity transform. With invertY the user Y axis
// points up and user y=0 sits at the bottom of a device of the given height.
func NewTransform(height int, invertY bool) *Transform {
	m := gg.Identity()
	if invertY {
		m = gg.Translate(0, float64(height)).Multiply(gg.Scale(1, -1))
	}
	return &Transform{m: m}
}

// Matrix returns the current user-to-device matrix
func (t *Transform) Matrix() gg.Matrix {
	return t.m
}

// Scale scales user space uniformly
func (t *Transform) Scale(factor float64) {
	t.m = t.m.Multiply(gg.Scale(factor, factor))
}

// Translate moves the user origin by (dx, dy) user units
func (t *Transform) Translate(dx, dy float64) {
	t.m = t.m.Multiply(gg.Translate(dx, dy))
}

// Save pushes the current matrix
func (t *Transform) Save() {
	t.stack = append(t.stack, t.m)
}

// Restore pops the last saved matrix. Unbalanced calls are ignored.
func (t *Transform) Restore() {
	if len(t.stack) == 0 {
		return
	}
	t.m = t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
}

// DeviceToUser converts a device point to user space
func (t *Transform) DeviceToUser(x, y float64) (float64, float64) {
	p := t.m.Invert().TransformPoint(gg.Pt(x, y))
	return p.X, p.Y
}

// DeviceToUserDistance converts a device vector to user space. Under an
// inverted Y axis the returned height is negative.
func (t *Transform) DeviceToUserDistance(w, h float64) (float64, float64) {
	p := t.m.Invert().TransformVector(gg.Pt(w, h))
	return p.X, p.Y
}

// UserToDevice converts a user point to device space
func (t *Transform) UserToDevice(x, y float64) (float64, float64) {
	p := t.m.TransformPoint(gg.Pt(x, y))
	return p.X, p.Y
}

// UserToDeviceDistance converts a user length to device pixels
func (t *Transform) UserToDeviceDistance(d float64) float64 {
	return d * t.m.ScaleFactor()
}

// ScaleFactor returns the user-to-device scale
func (t *Transform) ScaleFactor() float64 {
	return t.m.ScaleFactor()
}

// Flipped reports whether the matrix mirrors, which reverses arc direction
func (t *Transform) Flipped() bool {
	return t.m.A*t.m.E-t.m.B*t.m.D < 0
}
