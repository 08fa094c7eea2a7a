// Package drawitems wraps entities and overlays in drawable form.
//
// Entity wrappers hold a shared, read-only entity plus view-local state
// such as selection; the entity is never copied or modified.
package drawitems

import (
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/entity"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter"
)

// DrawItem is anything a renderer layer can draw
type DrawItem interface {
	// Draw paints the item; visible is the user-space area on screen.
	// opts may be nil for overlay layers.
	Draw(p painter.Painter, opts *DrawOptions, visible geo.Area)
	BoundingBox() geo.Area
}

// EntityItem is a DrawItem decorating a document entity
type EntityItem interface {
	DrawItem
	Entity() entity.Entity
	Selected() bool
	SetSelected(selected bool)
}

// DrawOptions carries per-pass drawing settings
type DrawOptions struct {
	SelectedColor painter.Color
	// Registry resolves layer colours and widths; nil keeps the painter's
	// current source and width
	Registry *meta.Registry
}

// DefaultDrawOptions returns the options the renderer starts with
func DefaultDrawOptions() *DrawOptions {
	return &DrawOptions{
		SelectedColor: painter.Color{R: 1, G: 0.4, B: 0, A: 1},
	}
}

// style sets colour and width for an entity item. The painter state is
// saved; callers must Restore after stroking.
func (o *DrawOptions) style(p painter.Painter, e entity.Entity, selected bool) {
	p.Save()
	if o == nil {
		return
	}
	if o.Registry != nil {
		if layer, ok := o.Registry.Layer(e.Layer()); ok {
			painter.SourceColor(p, layer.Color)
			if layer.LineWidth > 0 {
				p.LineWidth(layer.LineWidth)
			}
		}
	}
	if selected {
		painter.SourceColor(p, o.SelectedColor)
	}
}

// selection is embedded by the entity wrappers
type selection struct {
	selected bool
}

func (s *selection) Selected() bool            { return s.selected }
func (s *selection) SetSelected(selected bool) { s.selected = selected }
