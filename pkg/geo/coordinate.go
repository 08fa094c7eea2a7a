// Package geo provides the 2D value types shared by every CAD entity:
// coordinates, axis-aligned areas and the affine helpers (move, rotate,
// scale, mirror) that entities apply field by field.
package geo

import (
	"fmt"
	"math"
)

// Tolerance is the default epsilon for coordinate comparisons
const Tolerance = 1.0e-10

// Coordinate is an immutable 2D point in user space
type Coordinate struct {
	X float64
	Y float64
}

// Coord is shorthand for Coordinate{X: x, Y: y}
func Coord(x, y float64) Coordinate {
	return Coordinate{X: x, Y: y}
}

// Add returns c + other
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{X: c.X + other.X, Y: c.Y + other.Y}
}

// Sub returns c - other
func (c Coordinate) Sub(other Coordinate) Coordinate {
	return Coordinate{X: c.X - other.X, Y: c.Y - other.Y}
}

// Multiply scales both components by factor
func (c Coordinate) Multiply(factor float64) Coordinate {
	return Coordinate{X: c.X * factor, Y: c.Y * factor}
}

// Negate returns (-X, -Y)
func (c Coordinate) Negate() Coordinate {
	return Coordinate{X: -c.X, Y: -c.Y}
}

// Dot returns the dot product of c and other
func (c Coordinate) Dot(other Coordinate) float64 {
	return c.X*other.X + c.Y*other.Y
}

// SquaredLength returns X*X + Y*Y
func (c Coordinate) SquaredLength() float64 {
	return c.Dot(c)
}

// Magnitude returns the distance from the origin
func (c Coordinate) Magnitude() float64 {
	return math.Hypot(c.X, c.Y)
}

// DistanceTo returns the euclidean distance between c and other
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return other.Sub(c).Magnitude()
}

// Angle returns the angle of the vector from the origin, in radians
func (c Coordinate) Angle() float64 {
	return math.Atan2(c.Y, c.X)
}

// AngleTo returns the angle of the vector from c to other, in radians
func (c Coordinate) AngleTo(other Coordinate) float64 {
	return other.Sub(c).Angle()
}

// Move is an alias for Add, mirroring the entity vocabulary
func (c Coordinate) Move(offset Coordinate) Coordinate {
	return c.Add(offset)
}

// Rotate rotates c around center by angle radians (counter-clockwise)
func (c Coordinate) Rotate(center Coordinate, angle float64) Coordinate {
	if angle == 0 {
		return c
	}

	x := c.X - center.X
	y := c.Y - center.Y

	cos := math.Cos(angle)
	sin := math.Sin(angle)

	return Coordinate{
		X: x*cos - y*sin + center.X,
		Y: x*sin + y*cos + center.Y,
	}
}

// Scale scales c relative to center, per axis
func (c Coordinate) Scale(center, factor Coordinate) Coordinate {
	return Coordinate{
		X: center.X + (c.X-center.X)*factor.X,
		Y: center.Y + (c.Y-center.Y)*factor.Y,
	}
}

// Mirror reflects c across the infinite line through axis1 and axis2.
// A degenerate axis (axis1 == axis2) reflects through the point axis1.
func (c Coordinate) Mirror(axis1, axis2 Coordinate) Coordinate {
	dir := axis2.Sub(axis1)
	length := dir.SquaredLength()
	if length < Tolerance {
		return axis1.Multiply(2).Sub(c)
	}

	// Project onto the axis, then step the same distance past it
	projected := axis1.Add(dir.Multiply(c.Sub(axis1).Dot(dir) / length))
	return projected.Multiply(2).Sub(c)
}

// Equal reports whether both components differ by at most tolerance
func (c Coordinate) Equal(other Coordinate, tolerance float64) bool {
	return math.Abs(c.X-other.X) <= tolerance && math.Abs(c.Y-other.Y) <= tolerance
}

// String formats the coordinate as (x, y)
func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g)", c.X, c.Y)
}

// MirrorAngle reflects a direction angle (radians) across the axis through
// axis1 and axis2. Arcs use it to keep their sweep after a mirror.
func MirrorAngle(angle float64, axis1, axis2 Coordinate) float64 {
	axisAngle := axis1.AngleTo(axis2)
	return NormalizeAngle(2*axisAngle - angle)
}

// NormalizeAngle folds an angle into [0, 2π)
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
