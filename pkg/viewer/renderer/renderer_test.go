package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/document"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/entity"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/drawitems"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter/ggpainter"
)

const tol = 1e-9

// fakePainter does the transform math for real and records the rest
type fakePainter struct {
	*painter.Transform
	width, height int
	clears        [][4]float64
	moves         int
	strokes       int
	closed        bool
}

func (f *fakePainter) Clear(r, g, b, a float64)            { f.clears = append(f.clears, [4]float64{r, g, b, a}) }
func (f *fakePainter) SourceRGB(r, g, b float64)           {}
func (f *fakePainter) SourceRGBA(r, g, b, a float64)       {}
func (f *fakePainter) LineWidth(width float64)             {}
func (f *fakePainter) LineWidthCompensation(width float64) {}
func (f *fakePainter) MoveTo(x, y float64)                 { f.moves++ }
func (f *fakePainter) LineTo(x, y float64)                 {}
func (f *fakePainter) Arc(x, y, r, a1, a2 float64)         {}
func (f *fakePainter) Circle(x, y, r float64)              { f.moves++ }
func (f *fakePainter) Rectangle(x, y, w, h float64)        {}
func (f *fakePainter) Stroke()                             { f.strokes++ }
func (f *fakePainter) Fill()                               {}
func (f *fakePainter) Close() error                        { f.closed = true; return nil }

// counter is a painter factory that tracks creations and destructions
type counter struct {
	created   []*fakePainter
	destroyed []*fakePainter
	fail      error
}

func (c *counter) create(width, height int) (painter.Painter, error) {
	if c.fail != nil {
		return nil, c.fail
	}
	p := &fakePainter{Transform: painter.NewTransform(height, true), width: width, height: height}
	c.created = append(c.created, p)
	return p, nil
}

func (c *counter) destroy(p painter.Painter) {
	c.destroyed = append(c.destroyed, p.(*fakePainter))
}

func setup(t *testing.T, opts Options) (*document.Document, *DocumentRenderer, *counter) {
	t.Helper()
	doc := document.New()
	c := &counter{}
	opts.CreatePainter = c.create
	opts.DeletePainter = c.destroy

	r, err := New(doc, opts)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	r.NewDeviceSize(200, 100)
	return doc, r, c
}

func mustLine(t *testing.T, x1, y1, x2, y2 float64) *entity.Line {
	t.Helper()
	l, err := entity.NewLine(geo.Coord(x1, y1), geo.Coord(x2, y2))
	require.NoError(t, err)
	return l
}

func noop(painter.Painter) {}

func TestNewValidatesOptions(t *testing.T) {
	doc := document.New()
	c := &counter{}

	_, err := New(doc, Options{})
	assert.ErrorIs(t, err, ErrNoPainterFactory)

	_, err = New(nil, Options{CreatePainter: c.create})
	assert.ErrorIs(t, err, ErrNilDocument)

	_, err = New(doc, Options{CreatePainter: c.create, ZoomMin: 5, ZoomMax: 1})
	assert.ErrorIs(t, err, ErrInvalidZoomRange)

	r, err := New(doc, Options{CreatePainter: c.create})
	require.NoError(t, err)
	zmin, zmax := r.ZoomLimits()
	assert.Equal(t, DefaultZoomMin, zmin)
	assert.Equal(t, DefaultZoomMax, zmax)
	assert.Empty(t, c.created, "painters are created lazily")
}

func TestCachedPainterIsCreatedOnce(t *testing.T) {
	_, r, c := setup(t, Options{})

	p1, err := r.CachedPainter(painter.Document)
	require.NoError(t, err)
	p2, err := r.CachedPainter(painter.Document)
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	require.Len(t, c.created, 1)
	assert.Equal(t, 200, c.created[0].width)
	assert.Equal(t, 100, c.created[0].height)
}

func TestCachedPainterFactoryError(t *testing.T) {
	_, r, c := setup(t, Options{})
	c.fail = errors.New("no surface")

	_, err := r.CachedPainter(painter.Background)
	assert.ErrorIs(t, err, c.fail)
	assert.ErrorIs(t, r.Render(noop), c.fail)
}

func TestNewDeviceSize(t *testing.T) {
	_, r, c := setup(t, Options{})
	require.NoError(t, r.Render(noop))
	require.Len(t, c.created, 3)

	r.NewDeviceSize(200, 100)
	assert.Empty(t, c.destroyed, "same size keeps painters")
	require.NoError(t, r.Render(noop))
	assert.Len(t, c.created, 3)

	r.NewDeviceSize(300, 100)
	assert.ElementsMatch(t, c.created, c.destroyed, "new size destroys every painter")

	require.NoError(t, r.Render(noop))
	assert.Len(t, c.created, 6)
	assert.Equal(t, 300, c.created[5].width)
}

func TestZoomRoundTripRestoresVisibleArea(t *testing.T) {
	_, r, _ := setup(t, Options{})
	require.NoError(t, r.Render(noop))
	before := r.VisibleUserArea()
	require.False(t, before.IsEmpty())

	require.NoError(t, r.ScrollTo(1.25, 37, 81))
	zoomed := r.VisibleUserArea()
	assert.InDelta(t, before.Width()/1.25, zoomed.Width(), tol)

	require.NoError(t, r.ScrollTo(1/1.25, 37, 81))
	after := r.VisibleUserArea()
	assert.True(t, before.Equal(after, tol), "before %v, after %v", before, after)
}

func TestZoomKeepsPointUnderCursor(t *testing.T) {
	_, r, _ := setup(t, Options{})
	p, err := r.CachedPainter(painter.Document)
	require.NoError(t, err)

	ux, uy := p.DeviceToUser(150, 20)
	require.NoError(t, r.ScrollTo(3, 150, 20))
	dx, dy := p.UserToDevice(ux, uy)
	assert.InDelta(t, 150, dx, tol)
	assert.InDelta(t, 20, dy, tol)
	assert.InDelta(t, 3, p.ScaleFactor(), tol)
}

func TestZoomAtCursorOnRasterPainter(t *testing.T) {
	doc := document.New()
	r, err := New(doc, Options{
		CreatePainter: ggpainter.Factory(ggpainter.Options{InvertY: true}),
		DeletePainter: ggpainter.Destroy,
	})
	require.NoError(t, err)
	defer r.Close()
	r.NewDeviceSize(400, 300)
	require.NoError(t, r.Render(noop))

	p, err := r.CachedPainter(painter.Document)
	require.NoError(t, err)
	before := r.VisibleUserArea()
	ux, uy := p.DeviceToUser(100, 50)

	require.NoError(t, r.ScrollTo(2, 100, 50))
	dx, dy := p.UserToDevice(ux, uy)
	assert.InDelta(t, 100, dx, tol)
	assert.InDelta(t, 50, dy, tol)

	zoomed := r.VisibleUserArea()
	assert.InDelta(t, before.Width()/2, zoomed.Width(), tol)
	assert.True(t, before.ContainsArea(zoomed), "before %v, zoomed %v", before, zoomed)

	require.NoError(t, r.ScrollTo(0.5, 100, 50))
	assert.True(t, before.Equal(r.VisibleUserArea(), tol), "before %v, after %v", before, r.VisibleUserArea())
}

func TestZoomClamp(t *testing.T) {
	_, r, _ := setup(t, Options{ZoomMin: 0.5, ZoomMax: 4})
	p, err := r.CachedPainter(painter.Document)
	require.NoError(t, err)

	require.NoError(t, r.ScrollTo(2, 10, 10))
	require.NoError(t, r.ScrollTo(2, 10, 10))
	require.InDelta(t, 4, p.ScaleFactor(), tol)

	require.NoError(t, r.ScrollTo(2, 10, 10))
	assert.InDelta(t, 4, p.ScaleFactor(), tol, "zoom in beyond max is ignored")

	require.NoError(t, r.ScrollTo(0.5, 10, 10))
	require.NoError(t, r.ScrollTo(0.5, 10, 10))
	require.NoError(t, r.ScrollTo(0.5, 10, 10))
	require.InDelta(t, 0.5, p.ScaleFactor(), tol)
	require.NoError(t, r.ScrollTo(0.5, 10, 10))
	assert.InDelta(t, 0.5, p.ScaleFactor(), tol, "zoom out beyond min is ignored")
}

func TestViewSurvivesPainterRecreation(t *testing.T) {
	_, r, _ := setup(t, Options{})
	require.NoError(t, r.Render(noop))
	require.NoError(t, r.ScrollTo(2, 100, 50))
	bg, err := r.CachedPainter(painter.Background)
	require.NoError(t, err)
	wantX, wantY := bg.DeviceToUser(0, 0)

	r.NewDeviceSize(200, 101)
	r.NewDeviceSize(200, 100)
	fresh, err := r.CachedPainter(painter.Background)
	require.NoError(t, err)

	x, y := fresh.DeviceToUser(0, 0)
	assert.InDelta(t, wantX, x, tol)
	assert.InDelta(t, wantY, y, tol)
	assert.InDelta(t, 2, r.Scale(), tol)
}

func TestAddLineAndCommit(t *testing.T) {
	doc, r, _ := setup(t, Options{})
	line := mustLine(t, 1, 2, 30, 40)

	require.NoError(t, doc.AddEntity(line))
	require.NoError(t, doc.CommitProcess())

	c := r.Container()
	require.Equal(t, 1, c.Len())
	item, ok := c.Item(line.ID())
	require.True(t, ok)
	assert.Same(t, line, item.Entity())
	assert.False(t, item.Selected(), "lines start unselected")
	assert.True(t, r.Bounds().Equal(line.BoundingBox(), tol))

	require.NoError(t, doc.RemoveEntity(line.ID()))
	assert.Equal(t, 0, c.Len())
	assert.True(t, r.Bounds().IsEmpty())
}

func TestCircleStartsSelected(t *testing.T) {
	doc, r, _ := setup(t, Options{})
	circle, err := entity.NewCircle(geo.Coord(0, 0), 5)
	require.NoError(t, err)

	require.NoError(t, doc.Execute(func(b *document.Batch) error {
		b.Add(circle)
		return nil
	}))

	item, ok := r.Container().Item(circle.ID())
	require.True(t, ok)
	assert.True(t, item.Selected())
}

func TestUnmappedKindIsSkipped(t *testing.T) {
	doc, r, _ := setup(t, Options{})
	dim, err := entity.DimRadialBuilder{DefinitionPoint2: geo.Coord(3, 0)}.Build()
	require.NoError(t, err)

	require.NoError(t, doc.AddEntity(dim))
	require.NoError(t, doc.CommitProcess())

	assert.Equal(t, 1, doc.Len())
	assert.Equal(t, 0, r.Container().Len())
}

func TestExistingEntitiesAreIndexed(t *testing.T) {
	doc := document.New()
	line := mustLine(t, 0, 0, 5, 5)
	require.NoError(t, doc.AddEntity(line))

	c := &counter{}
	r, err := New(doc, Options{CreatePainter: c.create})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 1, r.Container().Len())
}

func TestRenderLayersInOrder(t *testing.T) {
	_, r, c := setup(t, Options{})

	var order []painter.Painter
	require.NoError(t, r.Render(func(p painter.Painter) { order = append(order, p) }))
	require.Len(t, order, 3)

	bg, _ := r.CachedPainter(painter.Background)
	doc, _ := r.CachedPainter(painter.Document)
	fg, _ := r.CachedPainter(painter.Drawing)
	assert.Equal(t, []painter.Painter{bg, doc, fg}, order)

	assert.Equal(t, [][4]float64{{0, 0.1, 0, 1}}, bg.(*fakePainter).clears)
	assert.Equal(t, [][4]float64{{1, 1, 1, 0}}, doc.(*fakePainter).clears)
	assert.Equal(t, [][4]float64{{1, 1, 1, 0}}, fg.(*fakePainter).clears)
	assert.Len(t, c.created, 3)
}

func TestBackgroundItemsReplaceFlatFill(t *testing.T) {
	_, r, _ := setup(t, Options{})
	r.AddBackgroundItem(drawitems.NewGrid(10))
	cursor := drawitems.NewCursor()
	r.AddForegroundItem(cursor)
	require.NoError(t, r.FitTo(geo.NewArea(geo.Coord(0, 0), geo.Coord(100, 50))))
	cursor.MoveTo(geo.Coord(50, 25))

	require.NoError(t, r.Render(noop))
	bg, _ := r.CachedPainter(painter.Background)
	fg, _ := r.CachedPainter(painter.Drawing)

	// The grid clears with its own colour and draws lines
	assert.Len(t, bg.(*fakePainter).clears, 1)
	assert.Positive(t, bg.(*fakePainter).strokes)
	assert.Equal(t, 2, fg.(*fakePainter).moves)
}

func TestRenderCullsAndHidesLayers(t *testing.T) {
	doc, r, _ := setup(t, Options{})
	inside := mustLine(t, 10, 10, 20, 20)
	outside := mustLine(t, 5000, 5000, 5010, 5010)
	hidden, err := entity.LineBuilder{Common: entity.Common{Layer: "hidden"}, Start: geo.Coord(1, 1), End: geo.Coord(2, 2)}.Build()
	require.NoError(t, err)

	require.NoError(t, doc.Execute(func(b *document.Batch) error {
		b.Add(inside)
		b.Add(outside)
		b.Add(hidden)
		return nil
	}))
	require.NoError(t, r.FitTo(geo.NewArea(geo.Coord(0, 0), geo.Coord(40, 40))))
	r.SetLayerVisible("hidden", false)

	require.NoError(t, r.Render(noop))
	p, _ := r.CachedPainter(painter.Document)
	assert.Equal(t, 1, p.(*fakePainter).moves)
	assert.Equal(t, 1, p.(*fakePainter).strokes)
}

func TestFrozenLayersAreNeitherDrawnNorSelected(t *testing.T) {
	doc, r, _ := setup(t, Options{})
	require.NoError(t, doc.Registry().AddLayer(meta.Layer{Name: "ice", Frozen: true}))
	thawed := mustLine(t, 10, 10, 20, 20)
	frozen, err := entity.LineBuilder{Common: entity.Common{Layer: "ice"}, Start: geo.Coord(12, 12), End: geo.Coord(18, 18)}.Build()
	require.NoError(t, err)

	require.NoError(t, doc.Execute(func(b *document.Batch) error {
		b.Add(thawed)
		b.Add(frozen)
		return nil
	}))
	require.NoError(t, r.FitTo(geo.NewArea(geo.Coord(0, 0), geo.Coord(40, 40))))

	require.NoError(t, r.Render(noop))
	p, _ := r.CachedPainter(painter.Document)
	assert.Equal(t, 1, p.(*fakePainter).strokes)

	got := r.Select(geo.NewArea(geo.Coord(0, 0), geo.Coord(40, 40)), false)
	require.Len(t, got, 1)
	assert.Same(t, thawed, got[0].Entity())
}

func TestFitTo(t *testing.T) {
	_, r, _ := setup(t, Options{})
	area := geo.NewArea(geo.Coord(-50, 10), geo.Coord(50, 30))

	require.NoError(t, r.FitTo(area))
	visible := r.VisibleUserArea()
	assert.True(t, visible.ContainsArea(area), "visible %v should contain %v", visible, area)
	assert.True(t, visible.Center().Equal(area.Center(), tol))
	assert.InDelta(t, 200*0.9/100, r.Scale(), tol)

	// Degenerate areas leave the view alone
	require.NoError(t, r.FitTo(geo.EmptyArea()))
	assert.InDelta(t, 1, r.Scale(), tol)
}

func TestPan(t *testing.T) {
	_, r, _ := setup(t, Options{})
	require.NoError(t, r.Render(noop))
	before := r.VisibleUserArea()

	// Content follows the drag, so the window moves the other way
	require.NoError(t, r.Pan(20, 0))
	after := r.VisibleUserArea()
	assert.InDelta(t, before.MinP.X-20, after.MinP.X, tol)
	assert.InDelta(t, before.Width(), after.Width(), tol)
}

func TestSelection(t *testing.T) {
	doc, r, _ := setup(t, Options{})
	a := mustLine(t, 0, 0, 10, 0)
	b := mustLine(t, 5, -5, 5, 50)
	require.NoError(t, doc.Execute(func(batch *document.Batch) error {
		batch.Add(a)
		batch.Add(b)
		return nil
	}))

	area := geo.NewArea(geo.Coord(-1, -10), geo.Coord(11, 10))
	got := r.Select(area, true)
	require.Len(t, got, 1)
	assert.Same(t, a, got[0].Entity())

	got = r.Select(area, false)
	assert.Len(t, got, 2)
	assert.Len(t, r.Selection(), 2)

	r.ClearSelection()
	assert.Empty(t, r.Selection())
}

func TestCloseUnsubscribesAndReleases(t *testing.T) {
	doc, r, c := setup(t, Options{})
	require.NoError(t, r.Render(noop))

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.ElementsMatch(t, c.created, c.destroyed)

	require.NoError(t, doc.AddEntity(mustLine(t, 0, 0, 1, 1)))
	assert.Equal(t, 0, r.Container().Len())

	_, err := r.CachedPainter(painter.Document)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLayerConfig(t *testing.T) {
	lc := NewLayerConfig()
	assert.True(t, lc.IsVisible("any"))

	lc.SetVisible("a", false)
	assert.False(t, lc.IsVisible("a"))

	lc.ShowOnly("b")
	assert.False(t, lc.IsVisible("any"))
	assert.True(t, lc.IsVisible("b"))
	lc.SetVisible("c", true)
	assert.True(t, lc.IsVisible("c"))

	lc.ShowAll()
	assert.True(t, lc.IsVisible("a"))
}
