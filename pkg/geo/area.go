package geo

import (
	"fmt"
	"math"
)

// Area is an axis-aligned rectangular region in user space.
// The zero value is a degenerate area at the origin; use EmptyArea for
// "no area at all".
type Area struct {
	MinP Coordinate // Minimum (bottom-left in user space) corner
	MaxP Coordinate // Maximum corner
}

// NewArea builds an area from two arbitrary corners
func NewArea(p1, p2 Coordinate) Area {
	return Area{
		MinP: Coordinate{X: math.Min(p1.X, p2.X), Y: math.Min(p1.Y, p2.Y)},
		MaxP: Coordinate{X: math.Max(p1.X, p2.X), Y: math.Max(p1.Y, p2.Y)},
	}
}

// NewAreaWH builds an area from a corner and a (possibly negative) size
func NewAreaWH(corner Coordinate, width, height float64) Area {
	return NewArea(corner, Coordinate{X: corner.X + width, Y: corner.Y + height})
}

// EmptyArea returns the undefined area. It contains nothing, intersects
// nothing, and is the identity element of Merge.
func EmptyArea() Area {
	return Area{
		MinP: Coordinate{X: math.Inf(1), Y: math.Inf(1)},
		MaxP: Coordinate{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty reports whether the area is undefined
func (a Area) IsEmpty() bool {
	return a.MinP.X > a.MaxP.X || a.MinP.Y > a.MaxP.Y
}

// Width returns the horizontal extent (0 for an empty area)
func (a Area) Width() float64 {
	if a.IsEmpty() {
		return 0
	}
	return a.MaxP.X - a.MinP.X
}

// Height returns the vertical extent (0 for an empty area)
func (a Area) Height() float64 {
	if a.IsEmpty() {
		return 0
	}
	return a.MaxP.Y - a.MinP.Y
}

// Center returns the midpoint of the area
func (a Area) Center() Coordinate {
	return Coordinate{
		X: (a.MinP.X + a.MaxP.X) / 2.0,
		Y: (a.MinP.Y + a.MaxP.Y) / 2.0,
	}
}

// Contains reports whether p lies inside the area, edges included
func (a Area) Contains(p Coordinate) bool {
	return p.X >= a.MinP.X && p.X <= a.MaxP.X &&
		p.Y >= a.MinP.Y && p.Y <= a.MaxP.Y
}

// ContainsArea reports whether other lies fully inside a
func (a Area) ContainsArea(other Area) bool {
	if a.IsEmpty() || other.IsEmpty() {
		return false
	}
	return a.Contains(other.MinP) && a.Contains(other.MaxP)
}

// Intersects reports whether two areas overlap, touching edges included
func (a Area) Intersects(other Area) bool {
	if a.IsEmpty() || other.IsEmpty() {
		return false
	}
	return a.MinP.X <= other.MaxP.X && a.MaxP.X >= other.MinP.X &&
		a.MinP.Y <= other.MaxP.Y && a.MaxP.Y >= other.MinP.Y
}

// Merge returns the smallest area containing both a and other
func (a Area) Merge(other Area) Area {
	if other.IsEmpty() {
		return a
	}
	if a.IsEmpty() {
		return other
	}
	return Area{
		MinP: Coordinate{X: math.Min(a.MinP.X, other.MinP.X), Y: math.Min(a.MinP.Y, other.MinP.Y)},
		MaxP: Coordinate{X: math.Max(a.MaxP.X, other.MaxP.X), Y: math.Max(a.MaxP.Y, other.MaxP.Y)},
	}
}

// MergeCoordinate returns the smallest area containing a and p
func (a Area) MergeCoordinate(p Coordinate) Area {
	return a.Merge(Area{MinP: p, MaxP: p})
}

// Increase grows the area by amount on every side
func (a Area) Increase(amount float64) Area {
	if a.IsEmpty() {
		return a
	}
	return Area{
		MinP: Coordinate{X: a.MinP.X - amount, Y: a.MinP.Y - amount},
		MaxP: Coordinate{X: a.MaxP.X + amount, Y: a.MaxP.Y + amount},
	}
}

// Quadrants splits the area into four equal children ordered
// bottom-left, bottom-right, top-left, top-right
func (a Area) Quadrants() [4]Area {
	c := a.Center()
	return [4]Area{
		{MinP: a.MinP, MaxP: c},
		{MinP: Coordinate{X: c.X, Y: a.MinP.Y}, MaxP: Coordinate{X: a.MaxP.X, Y: c.Y}},
		{MinP: Coordinate{X: a.MinP.X, Y: c.Y}, MaxP: Coordinate{X: c.X, Y: a.MaxP.Y}},
		{MinP: c, MaxP: a.MaxP},
	}
}

// Equal compares both corners within tolerance. Two empty areas are equal.
func (a Area) Equal(other Area, tolerance float64) bool {
	if a.IsEmpty() || other.IsEmpty() {
		return a.IsEmpty() == other.IsEmpty()
	}
	return a.MinP.Equal(other.MinP, tolerance) && a.MaxP.Equal(other.MaxP, tolerance)
}

// String formats the area as [min .. max]
func (a Area) String() string {
	if a.IsEmpty() {
		return "[empty]"
	}
	return fmt.Sprintf("[%s .. %s]", a.MinP, a.MaxP)
}
