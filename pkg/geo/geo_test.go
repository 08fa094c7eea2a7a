package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestCoordinateRotate(t *testing.T) {
	tests := []struct {
		name   string
		point  Coordinate
		center Coordinate
		angle  float64
		want   Coordinate
	}{
		{"quarter turn around origin", Coord(1, 0), Coord(0, 0), math.Pi / 2, Coord(0, 1)},
		{"half turn around offset center", Coord(2, 1), Coord(1, 1), math.Pi, Coord(0, 1)},
		{"zero angle is identity", Coord(3, 4), Coord(10, 10), 0, Coord(3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.point.Rotate(tt.center, tt.angle)
			assert.True(t, got.Equal(tt.want, eps), "Rotate() = %v, want %v", got, tt.want)
		})
	}
}

func TestCoordinateScale(t *testing.T) {
	got := Coord(3, 5).Scale(Coord(1, 1), Coord(2, 0.5))
	assert.True(t, got.Equal(Coord(5, 3), eps), "Scale() = %v", got)
}

func TestCoordinateMirror(t *testing.T) {
	tests := []struct {
		name         string
		point        Coordinate
		axis1, axis2 Coordinate
		want         Coordinate
	}{
		{"x axis", Coord(2, 3), Coord(0, 0), Coord(1, 0), Coord(2, -3)},
		{"y axis", Coord(2, 3), Coord(0, 0), Coord(0, 5), Coord(-2, 3)},
		{"diagonal", Coord(1, 0), Coord(0, 0), Coord(1, 1), Coord(0, 1)},
		{"degenerate axis reflects through point", Coord(1, 1), Coord(0, 0), Coord(0, 0), Coord(-1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.point.Mirror(tt.axis1, tt.axis2)
			assert.True(t, got.Equal(tt.want, eps), "Mirror() = %v, want %v", got, tt.want)
		})
	}
}

func TestMirrorTwiceIsIdentity(t *testing.T) {
	p := Coord(-4.5, 7.25)
	a1, a2 := Coord(1, 2), Coord(-3, 9)
	assert.True(t, p.Mirror(a1, a2).Mirror(a1, a2).Equal(p, eps))
}

func TestNewAreaNormalisesCorners(t *testing.T) {
	a := NewArea(Coord(5, -1), Coord(-2, 4))
	assert.Equal(t, Coord(-2, -1), a.MinP)
	assert.Equal(t, Coord(5, 4), a.MaxP)
	assert.InDelta(t, 7, a.Width(), eps)
	assert.InDelta(t, 5, a.Height(), eps)

	wh := NewAreaWH(Coord(10, 10), -4, 2)
	assert.Equal(t, Coord(6, 10), wh.MinP)
	assert.Equal(t, Coord(10, 12), wh.MaxP)
}

func TestEmptyArea(t *testing.T) {
	empty := EmptyArea()
	assert.True(t, empty.IsEmpty())
	assert.Zero(t, empty.Width())
	assert.False(t, empty.Intersects(NewArea(Coord(-1e12, -1e12), Coord(1e12, 1e12))))

	box := NewArea(Coord(0, 0), Coord(1, 1))
	assert.Equal(t, box, empty.Merge(box))
	assert.Equal(t, box, box.Merge(empty))
	assert.True(t, empty.Equal(EmptyArea(), eps))
	assert.False(t, empty.Equal(box, eps))
}

func TestAreaIntersectsAndContains(t *testing.T) {
	a := NewArea(Coord(0, 0), Coord(10, 10))

	assert.True(t, a.Intersects(NewArea(Coord(5, 5), Coord(15, 15))))
	assert.True(t, a.Intersects(NewArea(Coord(10, 0), Coord(12, 2))), "touching edges intersect")
	assert.False(t, a.Intersects(NewArea(Coord(11, 11), Coord(12, 12))))

	assert.True(t, a.ContainsArea(NewArea(Coord(1, 1), Coord(9, 9))))
	assert.False(t, a.ContainsArea(NewArea(Coord(1, 1), Coord(11, 9))))
	assert.True(t, a.Contains(Coord(10, 0)))
}

func TestAreaQuadrantsCoverParent(t *testing.T) {
	a := NewArea(Coord(0, 0), Coord(8, 4))
	merged := EmptyArea()
	for _, q := range a.Quadrants() {
		assert.InDelta(t, 4, q.Width(), eps)
		assert.InDelta(t, 2, q.Height(), eps)
		merged = merged.Merge(q)
	}
	assert.True(t, merged.Equal(a, eps))
}

func TestMirrorAngle(t *testing.T) {
	// Mirroring across the x axis negates the angle
	got := MirrorAngle(math.Pi/4, Coord(0, 0), Coord(1, 0))
	assert.InDelta(t, 7*math.Pi/4, got, eps)
}
