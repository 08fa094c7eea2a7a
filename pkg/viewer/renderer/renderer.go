// Package renderer keeps a viewer's derived state in step with a document:
// a spatial index of drawable entities and one cached painter surface per
// layer purpose, all sharing a zoom/pan transform.
//
// The renderer never queries the document while rendering. It builds its
// index from document events and reads only the index afterwards.
package renderer

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/document"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/event"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/quadtree"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/drawitems"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter"
)

const (
	DefaultZoomMin = 0.05
	DefaultZoomMax = 20.0
)

var (
	ErrNoPainterFactory = errors.New("renderer: no painter factory")
	ErrNilDocument      = errors.New("renderer: nil document")
	ErrInvalidZoomRange = errors.New("renderer: invalid zoom range")
	ErrClosed           = errors.New("renderer: closed")
)

// Options configures a DocumentRenderer
type Options struct {
	CreatePainter painter.Factory    // Required
	DeletePainter painter.Destructor // Defaults to Painter.Close

	ZoomMin float64 // Defaults to DefaultZoomMin
	ZoomMax float64 // Defaults to DefaultZoomMax

	Registry    drawitems.Registry     // Defaults to drawitems.DefaultRegistry
	DrawOptions *drawitems.DrawOptions // Defaults to drawitems.DefaultDrawOptions
	Tree        quadtree.Options

	// DebugQuadTree outlines the spatial index nodes on the document layer
	DebugQuadTree bool

	Logger zerolog.Logger
}

// DocumentRenderer renders one document into background, document and
// drawing (foreground) painter surfaces
type DocumentRenderer struct {
	doc  *document.Document
	subs event.Group
	opts Options

	container *EntityContainer
	layers    *LayerConfig

	painters     map[painter.CacheType]painter.Painter
	deviceWidth  int
	deviceHeight int
	view         view
	visibleArea  geo.Area
	background   []drawitems.DrawItem
	foreground   []drawitems.DrawItem
	closed       bool
	logger       zerolog.Logger
}

// New creates a renderer subscribed to doc. Entities already in doc are
// indexed immediately.
func New(doc *document.Document, opts Options) (*DocumentRenderer, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if opts.CreatePainter == nil {
		return nil, ErrNoPainterFactory
	}
	if opts.DeletePainter == nil {
		opts.DeletePainter = closePainter(opts.Logger)
	}
	if opts.ZoomMin == 0 {
		opts.ZoomMin = DefaultZoomMin
	}
	if opts.ZoomMax == 0 {
		opts.ZoomMax = DefaultZoomMax
	}
	if opts.ZoomMin <= 0 || opts.ZoomMin >= opts.ZoomMax {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidZoomRange, opts.ZoomMin, opts.ZoomMax)
	}
	if opts.Registry == nil {
		opts.Registry = drawitems.DefaultRegistry()
	}
	if opts.DrawOptions == nil {
		opts.DrawOptions = drawitems.DefaultDrawOptions()
	}
	if opts.DrawOptions.Registry == nil {
		opts.DrawOptions.Registry = doc.Registry()
	}

	r := &DocumentRenderer{
		doc:         doc,
		opts:        opts,
		container:   NewEntityContainer(opts.Tree),
		layers:      NewLayerConfig(),
		painters:    make(map[painter.CacheType]painter.Painter),
		view:        newView(),
		visibleArea: geo.EmptyArea(),
		logger:      opts.Logger,
	}

	for _, e := range doc.Entities() {
		r.onAddEntity(document.AddEntityEvent{Entity: e})
	}
	r.container.Optimise()

	r.subs = event.Group{
		doc.SubscribeAddEntity(r.onAddEntity),
		doc.SubscribeRemoveEntity(r.onRemoveEntity),
		doc.SubscribeCommitProcess(r.onCommitProcess),
	}
	return r, nil
}

func closePainter(logger zerolog.Logger) painter.Destructor {
	return func(p painter.Painter) {
		if err := p.Close(); err != nil {
			logger.Warn().Err(err).Msg("close painter")
		}
	}
}

// Close unsubscribes from the document and releases every painter.
// It is safe to call more than once.
func (r *DocumentRenderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.subs.Close()
	r.dropPainters()
	return nil
}

func (r *DocumentRenderer) dropPainters() {
	for _, ct := range painter.CacheTypes {
		if p, ok := r.painters[ct]; ok {
			r.opts.DeletePainter(p)
		}
	}
	clear(r.painters)
}

// Document returns the rendered document
func (r *DocumentRenderer) Document() *document.Document {
	return r.doc
}

// Container returns the spatial index
func (r *DocumentRenderer) Container() *EntityContainer {
	return r.container
}

// Layers returns the layer visibility configuration
func (r *DocumentRenderer) Layers() *LayerConfig {
	return r.layers
}

// SetLayerVisible shows or hides a document layer at the next Render
func (r *DocumentRenderer) SetLayerVisible(layer string, visible bool) {
	r.layers.SetVisible(layer, visible)
}

// DeviceSize returns the current device dimensions
func (r *DocumentRenderer) DeviceSize() (int, int) {
	return r.deviceWidth, r.deviceHeight
}

// NewDeviceSize records the device dimensions. A change destroys every
// cached painter; they are recreated at the new size on next use with the
// current zoom and pan.
func (r *DocumentRenderer) NewDeviceSize(width, height int) {
	if width == r.deviceWidth && height == r.deviceHeight {
		return
	}
	r.deviceWidth, r.deviceHeight = width, height
	r.logger.Debug().Int("width", width).Int("height", height).Int("painters", len(r.painters)).Msg("device size changed")
	r.dropPainters()
}

// CachedPainter returns the painter for a purpose, creating it on first use
func (r *DocumentRenderer) CachedPainter(ct painter.CacheType) (painter.Painter, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if p, ok := r.painters[ct]; ok {
		return p, nil
	}
	p, err := r.opts.CreatePainter(r.deviceWidth, r.deviceHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s painter: %w", ct, err)
	}
	r.view.apply(p)
	r.painters[ct] = p
	return p, nil
}

// Scale returns the current zoom factor
func (r *DocumentRenderer) Scale() float64 {
	return r.view.scale
}

// ZoomLimits returns the allowed scale range
func (r *DocumentRenderer) ZoomLimits() (float64, float64) {
	return r.opts.ZoomMin, r.opts.ZoomMax
}

// ScrollTo zooms by factor around a device point, keeping the user-space
// point under it fixed. Zooming in at or beyond ZoomMax, or out at or
// below ZoomMin, is ignored.
func (r *DocumentRenderer) ScrollTo(factor, deviceX, deviceY float64) error {
	p, err := r.CachedPainter(painter.Document)
	if err != nil {
		return err
	}

	scale := p.ScaleFactor()
	if (r.opts.ZoomMax <= scale && factor > 1) || (r.opts.ZoomMin >= scale && factor < 1) {
		r.logger.Debug().Float64("scale", scale).Float64("factor", factor).Msg("zoom clamped")
		return nil
	}

	p.Save()
	userX, userY := p.DeviceToUser(deviceX, deviceY)
	p.Scale(factor)
	centerX, centerY := p.DeviceToUser(deviceX, deviceY)
	p.Restore()

	dx, dy := centerX-userX, centerY-userY
	for _, ct := range painter.CacheTypes {
		if cp, ok := r.painters[ct]; ok {
			cp.Scale(factor)
			cp.Translate(dx, dy)
		}
	}
	r.view.then(factor, dx, dy)

	return r.updateVisibleArea()
}

// Pan moves the view by a device-space distance
func (r *DocumentRenderer) Pan(deviceDX, deviceDY float64) error {
	p, err := r.CachedPainter(painter.Document)
	if err != nil {
		return err
	}
	dx, dy := p.DeviceToUserDistance(deviceDX, deviceDY)
	for _, ct := range painter.CacheTypes {
		if cp, ok := r.painters[ct]; ok {
			cp.Translate(dx, dy)
		}
	}
	r.view.then(1, dx, dy)
	return r.updateVisibleArea()
}

// FitTo zooms and pans so that area fills the device. Painters are
// recreated with the new view.
func (r *DocumentRenderer) FitTo(area geo.Area) error {
	if r.closed {
		return ErrClosed
	}
	r.dropPainters()
	r.view = newView()

	p, err := r.CachedPainter(painter.Document)
	if err != nil {
		return err
	}
	v, ok := fit(p, area, r.deviceWidth, r.deviceHeight, r.opts.ZoomMin, r.opts.ZoomMax)
	if !ok {
		return r.updateVisibleArea()
	}

	v.apply(p)
	r.view = v
	r.logger.Debug().Stringer("area", area).Float64("scale", v.scale).Msg("fit view")
	return r.updateVisibleArea()
}

func (r *DocumentRenderer) updateVisibleArea() error {
	p, err := r.CachedPainter(painter.Document)
	if err != nil {
		return err
	}
	x, y := p.DeviceToUser(0, 0)
	w, h := p.DeviceToUserDistance(float64(r.deviceWidth), float64(r.deviceHeight))
	r.visibleArea = geo.NewAreaWH(geo.Coord(x, y), w, h)
	return nil
}

// VisibleUserArea returns the user-space rectangle on screen
func (r *DocumentRenderer) VisibleUserArea() geo.Area {
	return r.visibleArea
}

// Bounds returns the extent of everything drawable in the document
func (r *DocumentRenderer) Bounds() geo.Area {
	return r.container.Bounds()
}

// AddBackgroundItem registers an item drawn on the background layer
func (r *DocumentRenderer) AddBackgroundItem(item drawitems.DrawItem) {
	r.background = append(r.background, item)
}

// AddForegroundItem registers an item drawn on the drawing layer
func (r *DocumentRenderer) AddForegroundItem(item drawitems.DrawItem) {
	r.foreground = append(r.foreground, item)
}

// Render redraws the background, document and drawing layers in that
// order and passes each finished painter to writeBack
func (r *DocumentRenderer) Render(writeBack func(painter.Painter)) error {
	if err := r.updateVisibleArea(); err != nil {
		return err
	}
	visible := r.visibleArea

	// Background
	p, err := r.CachedPainter(painter.Background)
	if err != nil {
		return err
	}
	if len(r.background) == 0 {
		p.Clear(0, 0.1, 0, 1)
	}
	for _, item := range r.background {
		item.Draw(p, nil, visible)
	}
	writeBack(p)

	// Document
	p, err = r.CachedPainter(painter.Document)
	if err != nil {
		return err
	}
	p.Clear(1, 1, 1, 0)
	p.SourceRGB(1, 1, 1)
	p.LineWidthCompensation(0.5)
	for _, item := range r.container.Retrieve(visible) {
		if layer := item.Entity().Layer(); !r.layers.IsVisible(layer) || r.frozen(layer) {
			continue
		}
		item.Draw(p, r.opts.DrawOptions, visible)
	}
	if r.opts.DebugQuadTree {
		r.drawQuadTree(p)
	}
	writeBack(p)

	// Foreground
	p, err = r.CachedPainter(painter.Drawing)
	if err != nil {
		return err
	}
	p.Clear(1, 1, 1, 0)
	for _, item := range r.foreground {
		item.Draw(p, nil, visible)
	}
	writeBack(p)

	return nil
}

func (r *DocumentRenderer) drawQuadTree(p painter.Painter) {
	p.Save()
	defer p.Restore()
	p.SourceRGBA(0.7, 0.7, 1.0, 0.8)
	p.LineWidth(0)
	p.LineWidthCompensation(1)
	r.container.WalkNodes(func(a geo.Area, _ int) {
		if !a.IsEmpty() {
			p.Rectangle(a.MinP.X, a.MinP.Y, a.Width(), a.Height())
		}
	})
	p.Stroke()
}

// Select marks items inside area as selected and returns them. With
// occupies only items fully inside area qualify; otherwise touching is
// enough. Items on frozen layers are never selected.
func (r *DocumentRenderer) Select(area geo.Area, occupies bool) []drawitems.EntityItem {
	var selected []drawitems.EntityItem
	for _, item := range r.container.Retrieve(area) {
		if occupies && !area.ContainsArea(item.BoundingBox()) {
			continue
		}
		if r.frozen(item.Entity().Layer()) {
			continue
		}
		item.SetSelected(true)
		selected = append(selected, item)
	}
	return selected
}

func (r *DocumentRenderer) frozen(name string) bool {
	registry := r.opts.DrawOptions.Registry
	if registry == nil {
		return false
	}
	layer, ok := registry.Layer(name)
	return ok && layer.Frozen
}

// ClearSelection unselects every item
func (r *DocumentRenderer) ClearSelection() {
	r.container.Walk(func(item drawitems.EntityItem) bool {
		item.SetSelected(false)
		return true
	})
}

// Selection returns the selected items in insertion order
func (r *DocumentRenderer) Selection() []drawitems.EntityItem {
	var selected []drawitems.EntityItem
	r.container.Walk(func(item drawitems.EntityItem) bool {
		if item.Selected() {
			selected = append(selected, item)
		}
		return true
	})
	return selected
}

func (r *DocumentRenderer) onAddEntity(ev document.AddEntityEvent) {
	item, ok := r.opts.Registry.Wrap(ev.Entity)
	if !ok {
		r.logger.Debug().Str("kind", ev.Entity.Kind().String()).Stringer("id", ev.Entity.ID()).Msg("no drawable, skipped")
		return
	}
	r.container.Insert(item)
}

func (r *DocumentRenderer) onRemoveEntity(ev document.RemoveEntityEvent) {
	r.container.Remove(ev.Entity)
}

func (r *DocumentRenderer) onCommitProcess(document.CommitProcessEvent) {
	r.container.Optimise()
}
