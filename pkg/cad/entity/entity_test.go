package entity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

const eps = 1e-9

// sampleEntities returns one instance of every kind
func sampleEntities(t *testing.T) []Entity {
	t.Helper()

	point, err := PointBuilder{Location: geo.Coord(1, 2)}.Build()
	require.NoError(t, err)

	line, err := LineBuilder{Common: Common{Layer: "walls"}, Start: geo.Coord(0, 0), End: geo.Coord(10, 5)}.Build()
	require.NoError(t, err)

	circle, err := CircleBuilder{Center: geo.Coord(-3, 4), Radius: 2.5}.Build()
	require.NoError(t, err)

	arc, err := ArcBuilder{Center: geo.Coord(1, 1), Radius: 3, StartAngle: 0.25, EndAngle: 2.0}.Build()
	require.NoError(t, err)

	dim, err := DimRadialBuilder{
		DimensionBuilder: DimensionBuilder{
			DefinitionPoint: geo.Coord(0, 0),
			MiddleOfText:    geo.Coord(4, 4),
			ExplicitValue:   "<>",
		},
		DefinitionPoint2: geo.Coord(2, 2),
		Leader:           1.5,
	}.Build()
	require.NoError(t, err)

	return []Entity{point, line, circle, arc, dim}
}

// assertSameProperties compares property maps, coordinates and floats within eps
func assertSameProperties(t *testing.T, want, got Properties) {
	t.Helper()
	require.Equal(t, want.Keys(), got.Keys())
	for _, key := range want.Keys() {
		switch w := want[key].(type) {
		case geo.Coordinate:
			g, ok := got[key].(geo.Coordinate)
			require.True(t, ok, "property %q type changed", key)
			assert.True(t, w.Equal(g, eps), "property %q: want %v, got %v", key, w, g)
		case float64:
			g, ok := got[key].(float64)
			require.True(t, ok, "property %q type changed", key)
			assert.InDelta(t, w, g, eps, "property %q", key)
		default:
			assert.Equal(t, w, got[key], "property %q", key)
		}
	}
}

func TestMoveRoundTrip(t *testing.T) {
	offset := geo.Coord(12.5, -7.25)
	for _, e := range sampleEntities(t) {
		t.Run(e.Kind().String(), func(t *testing.T) {
			moved := e.Move(offset)
			back := moved.Move(offset.Negate())

			assert.Equal(t, e.ID(), moved.ID())
			assert.Equal(t, e.ID(), back.ID())
			assertSameProperties(t, e.AvailableProperties(), back.AvailableProperties())
			assert.Equal(t, e.Layer(), back.Layer())
		})
	}
}

func TestCopyAssignsNewID(t *testing.T) {
	for _, e := range sampleEntities(t) {
		t.Run(e.Kind().String(), func(t *testing.T) {
			dup := e.Copy(geo.Coord(0, 0))
			assert.NotEqual(t, e.ID(), dup.ID())
			assertSameProperties(t, e.AvailableProperties(), dup.AvailableProperties())
		})
	}
}

func TestTransformsPreserveID(t *testing.T) {
	center := geo.Coord(1, -1)
	for _, e := range sampleEntities(t) {
		t.Run(e.Kind().String(), func(t *testing.T) {
			assert.Equal(t, e.ID(), e.Rotate(center, 0.7).ID())
			assert.Equal(t, e.ID(), e.Scale(center, geo.Coord(2, 2)).ID())
			assert.Equal(t, e.ID(), e.Mirror(center, geo.Coord(4, 4)).ID())

			info := meta.NewMetaInfo(map[string]string{"k": "v"})
			modified := e.Modify("other", info, "blk")
			assert.Equal(t, e.ID(), modified.ID())
			assert.Equal(t, "other", modified.Layer())
			assert.Equal(t, "blk", modified.Block())
			assert.Same(t, info, modified.MetaInfo())
			assertSameProperties(t, e.AvailableProperties(), modified.AvailableProperties())
		})
	}
}

func TestTransformsLeaveReceiverUntouched(t *testing.T) {
	for _, e := range sampleEntities(t) {
		t.Run(e.Kind().String(), func(t *testing.T) {
			before := e.AvailableProperties()
			e.Move(geo.Coord(5, 5))
			e.Rotate(geo.Coord(0, 0), 1)
			e.Scale(geo.Coord(0, 0), geo.Coord(3, 3))
			e.Mirror(geo.Coord(0, 0), geo.Coord(0, 1))
			assertSameProperties(t, before, e.AvailableProperties())
		})
	}
}

func TestSetDragPointsMissingIndexReturnsOriginal(t *testing.T) {
	for _, e := range sampleEntities(t) {
		t.Run(e.Kind().String(), func(t *testing.T) {
			points := e.DragPoints()
			delete(points, len(points)-1)

			got := e.SetDragPoints(points)
			assert.Same(t, e, got)
		})
	}
}

func TestSetDragPointsRoundTrip(t *testing.T) {
	for _, e := range sampleEntities(t) {
		t.Run(e.Kind().String(), func(t *testing.T) {
			got := e.SetDragPoints(e.DragPoints())
			assert.Equal(t, e.ID(), got.ID())
			assertSameProperties(t, e.AvailableProperties(), got.AvailableProperties())
		})
	}
}

func TestSetPropertiesIgnoresUnknownKeys(t *testing.T) {
	for _, e := range sampleEntities(t) {
		t.Run(e.Kind().String(), func(t *testing.T) {
			got, err := e.SetProperties(Properties{"noSuchProperty": 42})
			require.NoError(t, err)
			assert.Equal(t, e.ID(), got.ID())
			assertSameProperties(t, e.AvailableProperties(), got.AvailableProperties())
		})
	}
}

func TestSetPropertiesTypeMismatch(t *testing.T) {
	for _, e := range sampleEntities(t) {
		t.Run(e.Kind().String(), func(t *testing.T) {
			// Every kind has at least one coordinate property; feed it a string
			var key string
			for _, k := range e.AvailableProperties().Keys() {
				if _, ok := e.AvailableProperties()[k].(geo.Coordinate); ok {
					key = k
					break
				}
			}
			require.NotEmpty(t, key)

			got, err := e.SetProperties(Properties{key: "not a coordinate"})
			assert.Nil(t, got)
			require.ErrorIs(t, err, ErrPropertyType)

			var typeErr *PropertyTypeError
			require.True(t, errors.As(err, &typeErr))
			assert.Equal(t, key, typeErr.Key)
			assert.Equal(t, e.Kind(), typeErr.Kind)
		})
	}
}

func TestSetPropertiesNoNumericCoercion(t *testing.T) {
	c, err := NewCircle(geo.Coord(0, 0), 1)
	require.NoError(t, err)

	_, err = c.SetProperties(Properties{PropRadius: 3})
	assert.ErrorIs(t, err, ErrPropertyType, "int must not be coerced to float64")

	edited, err := c.SetProperties(Properties{PropRadius: 3.0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, edited.(*Circle).Radius())
	assert.Equal(t, c.ID(), edited.ID())
}

func TestDimRadialProperties(t *testing.T) {
	dim := sampleEntities(t)[4].(*DimRadial)

	box := dim.BoundingBox()
	assert.True(t, box.Equal(geo.NewArea(geo.Coord(4, 4), geo.Coord(2, 2)), eps))

	edited, err := dim.SetProperties(Properties{
		PropDefinitionPoint2: geo.Coord(6, 0),
		PropLeader:           4.0,
		PropExplicitValue:    "R6",
	})
	require.NoError(t, err)

	got := edited.(*DimRadial)
	assert.Equal(t, geo.Coord(6, 0), got.DefinitionPoint2())
	assert.Equal(t, 4.0, got.Leader())
	assert.Equal(t, "R6", got.ExplicitValue())
	assert.Equal(t, geo.Coord(0, 0), got.DefinitionPoint(), "untouched fields keep current state")
	assert.InDelta(t, 6, got.Radius(), eps)
}

func TestArcBoundingBox(t *testing.T) {
	tests := []struct {
		name string
		arc  ArcBuilder
		want geo.Area
	}{
		{
			name: "first quadrant",
			arc:  ArcBuilder{Radius: 1, StartAngle: 0, EndAngle: math.Pi / 2},
			want: geo.NewArea(geo.Coord(0, 0), geo.Coord(1, 1)),
		},
		{
			name: "upper half crosses north extreme",
			arc:  ArcBuilder{Radius: 2, StartAngle: 0, EndAngle: math.Pi},
			want: geo.NewArea(geo.Coord(-2, 0), geo.Coord(2, 2)),
		},
		{
			name: "clockwise lower half",
			arc:  ArcBuilder{Radius: 2, StartAngle: 0, EndAngle: math.Pi, CW: true},
			want: geo.NewArea(geo.Coord(-2, -2), geo.Coord(2, 0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arc, err := tt.arc.Build()
			require.NoError(t, err)
			got := arc.BoundingBox()
			assert.True(t, got.Equal(tt.want, eps), "BoundingBox() = %v, want %v", got, tt.want)
		})
	}
}

func TestArcMirrorKeepsSweep(t *testing.T) {
	arc, err := ArcBuilder{Radius: 1, StartAngle: 0, EndAngle: math.Pi / 2}.Build()
	require.NoError(t, err)

	mirrored := arc.Mirror(geo.Coord(0, 0), geo.Coord(0, 1)).(*Arc)
	assert.InDelta(t, arc.Sweep(), mirrored.Sweep(), eps)
	assert.True(t, mirrored.StartPoint().Equal(geo.Coord(0, 1), eps))
	assert.True(t, mirrored.EndPoint().Equal(geo.Coord(-1, 0), eps))
}

func TestCircleScaleAndRotate(t *testing.T) {
	c, err := NewCircle(geo.Coord(2, 0), 1)
	require.NoError(t, err)

	scaled := c.Scale(geo.Coord(0, 0), geo.Coord(-3, -3)).(*Circle)
	assert.InDelta(t, 3, scaled.Radius(), eps)
	assert.True(t, scaled.Center().Equal(geo.Coord(-6, 0), eps))

	rotated := c.Rotate(geo.Coord(0, 0), math.Pi/2).(*Circle)
	assert.True(t, rotated.Center().Equal(geo.Coord(0, 2), eps))
}

func TestBuildersRejectInvalidGeometry(t *testing.T) {
	_, err := NewLine(geo.Coord(1, 1), geo.Coord(1, 1))
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = NewCircle(geo.Coord(0, 0), 0)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = ArcBuilder{Radius: -1}.Build()
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestLineEditsRejectZeroLength(t *testing.T) {
	line, err := NewLine(geo.Coord(0, 0), geo.Coord(4, 0))
	require.NoError(t, err)

	_, err = line.SetProperties(Properties{PropEnd: geo.Coord(0, 0)})
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	got := line.SetDragPoints(map[int]geo.Coordinate{0: geo.Coord(2, 2), 1: geo.Coord(2, 2)})
	assert.Same(t, line, got)

	moved, err := line.SetProperties(Properties{PropEnd: geo.Coord(0, 3)})
	require.NoError(t, err)
	assert.Equal(t, geo.Coord(0, 3), moved.(*Line).End())
}

func TestBuilderDefaults(t *testing.T) {
	id := NewID()
	line, err := LineBuilder{Common: Common{ID: id}, Start: geo.Coord(0, 0), End: geo.Coord(1, 0)}.Build()
	require.NoError(t, err)
	assert.Equal(t, id, line.ID())
	assert.Equal(t, meta.DefaultLayer, line.Layer())

	dim, err := DimRadialBuilder{}.Build()
	require.NoError(t, err)
	assert.Equal(t, AttachMiddleCenter, dim.AttachmentPoint())
	assert.Equal(t, 1.0, dim.LineSpacingFactor())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "dimradial", KindDimRadial.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
