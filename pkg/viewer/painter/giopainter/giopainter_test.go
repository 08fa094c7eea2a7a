package giopainter

import (
	"image/color"
	"math"
	"testing"

	"gioui.org/op"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearResetsDisplayList(t *testing.T) {
	p := New(100, 50, false)
	p.MoveTo(0, 0)
	p.LineTo(10, 10)
	p.Stroke()
	require.Equal(t, 1, p.Len())

	p.Clear(1, 1, 1, 0)
	assert.Equal(t, 1, p.Len())
	assert.True(t, p.commands[0].clear)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255}, p.commands[0].color)
}

func TestStrokeRecordsDevicePoints(t *testing.T) {
	p := New(100, 100, true)
	p.Clear(0, 0, 0, 0)
	p.Scale(2)
	p.SourceRGB(1, 0, 0)
	p.LineWidth(1)
	p.LineWidthCompensation(0.5)
	p.MoveTo(1, 1)
	p.LineTo(5, 1)
	p.Stroke()

	require.Equal(t, 2, p.Len())
	cmd := p.commands[1]
	assert.False(t, cmd.fill)
	assert.Equal(t, float32(2.5), cmd.width)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, cmd.color)
	require.Len(t, cmd.paths, 1)
	assert.Equal(t, float32(2), cmd.paths[0].points[0].X)
	assert.Equal(t, float32(98), cmd.paths[0].points[0].Y)
	assert.Equal(t, float32(10), cmd.paths[0].points[1].X)
}

func TestCircleIsClosedPolyline(t *testing.T) {
	p := New(200, 200, false)
	p.Translate(100, 100)
	p.Circle(0, 0, 50)
	p.Fill()

	require.Equal(t, 1, p.Len())
	sp := p.commands[0].paths[0]
	assert.True(t, sp.closed)
	for _, pt := range sp.points {
		d := math.Hypot(float64(pt.X-100), float64(pt.Y-100))
		assert.InDelta(t, 50, d, 1e-3)
	}
}

func TestRestoreRestoresSourceAndWidth(t *testing.T) {
	p := New(10, 10, false)
	p.SourceRGB(1, 1, 1)
	p.LineWidth(1)

	p.Save()
	p.SourceRGB(1, 0.2, 0)
	p.LineWidth(3)
	p.Restore()

	p.MoveTo(0, 5)
	p.LineTo(10, 5)
	p.Stroke()
	require.Equal(t, 1, p.Len())
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, p.commands[0].color)
	assert.Equal(t, float32(1), p.commands[0].width)

	// Unbalanced restore keeps the current state
	p.Restore()
	p.MoveTo(0, 5)
	p.LineTo(10, 5)
	p.Stroke()
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, p.commands[1].color)
}

func TestEmptyStrokeRecordsNothing(t *testing.T) {
	p := New(10, 10, false)
	p.Stroke()
	p.Fill()
	assert.Equal(t, 0, p.Len())
}

func TestAddReplaysIntoOps(t *testing.T) {
	p := New(64, 64, false)
	p.Clear(0, 0.1, 0, 1)
	p.Rectangle(4, 4, 10, 10)
	p.Fill()
	p.Arc(32, 32, 10, 0, math.Pi)
	p.Stroke()

	var ops op.Ops
	assert.NotPanics(t, func() { p.Add(&ops) })
	assert.NoError(t, p.Close())
	assert.Equal(t, 0, p.Len())
}
