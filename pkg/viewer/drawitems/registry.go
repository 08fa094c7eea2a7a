package drawitems

import "github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/entity"

// Constructor builds the wrapper for one entity kind. It returns false
// when the entity is not of the expected concrete type.
type Constructor func(e entity.Entity) (EntityItem, bool)

// Registry maps entity kinds to wrapper constructors. Kinds without an
// entry have no drawable form and are skipped by viewers.
type Registry map[entity.Kind]Constructor

// DefaultRegistry wraps lines, circles and arcs
func DefaultRegistry() Registry {
	return Registry{
		entity.KindLine: func(e entity.Entity) (EntityItem, bool) {
			l, ok := e.(*entity.Line)
			if !ok {
				return nil, false
			}
			return NewLCVLine(l), true
		},
		entity.KindCircle: func(e entity.Entity) (EntityItem, bool) {
			c, ok := e.(*entity.Circle)
			if !ok {
				return nil, false
			}
			return NewLCVCircle(c), true
		},
		entity.KindArc: func(e entity.Entity) (EntityItem, bool) {
			a, ok := e.(*entity.Arc)
			if !ok {
				return nil, false
			}
			return NewLCVArc(a), true
		},
	}
}

// Wrap builds the drawable for e, if its kind has one
func (r Registry) Wrap(e entity.Entity) (EntityItem, bool) {
	if e == nil {
		return nil, false
	}
	build, ok := r[e.Kind()]
	if !ok {
		return nil, false
	}
	return build(e)
}
