// Package document holds the authoritative entity collection of a drawing
// and notifies listeners about every change to it.
//
// Listeners are called synchronously on the mutating goroutine. A listener
// must not mutate the document it is being notified by; such calls fail
// with ErrReentrantMutation.
package document

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/entity"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/event"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

var (
	ErrNilEntity         = errors.New("document: nil entity")
	ErrDuplicateEntity   = errors.New("document: entity already exists")
	ErrEntityNotFound    = errors.New("document: entity not found")
	ErrReentrantMutation = errors.New("document: mutation from inside an event callback")
)

// AddEntityEvent is emitted after an entity became part of the document
type AddEntityEvent struct {
	Entity entity.Entity
}

// RemoveEntityEvent is emitted after an entity was excised
type RemoveEntityEvent struct {
	Entity entity.Entity
}

// CommitProcessEvent marks a batch boundary: the document is settled
type CommitProcessEvent struct{}

// Document owns the id -> entity mapping
type Document struct {
	entities map[entity.ID]entity.Entity
	registry *meta.Registry
	logger   zerolog.Logger

	addEntity     event.Signal[AddEntityEvent]
	removeEntity  event.Signal[RemoveEntityEvent]
	commitProcess event.Signal[CommitProcessEvent]

	dispatching bool
}

// Option configures a Document
type Option func(*Document)

// WithLogger sets the logger used for mutation tracing
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Document) { d.logger = logger }
}

// WithRegistry shares an existing layer/block registry
func WithRegistry(registry *meta.Registry) Option {
	return func(d *Document) { d.registry = registry }
}

// New creates an empty document
func New(opts ...Option) *Document {
	d := &Document{
		entities: make(map[entity.ID]entity.Entity),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = meta.NewRegistry()
	}
	return d
}

// Registry returns the layer and block registry entities refer to by name
func (d *Document) Registry() *meta.Registry {
	return d.registry
}

// SubscribeAddEntity registers fn for AddEntityEvent
func (d *Document) SubscribeAddEntity(fn func(AddEntityEvent)) event.Subscription {
	return d.addEntity.Connect(fn)
}

// SubscribeRemoveEntity registers fn for RemoveEntityEvent
func (d *Document) SubscribeRemoveEntity(fn func(RemoveEntityEvent)) event.Subscription {
	return d.removeEntity.Connect(fn)
}

// SubscribeCommitProcess registers fn for CommitProcessEvent
func (d *Document) SubscribeCommitProcess(fn func(CommitProcessEvent)) event.Subscription {
	return d.commitProcess.Connect(fn)
}

// AddEntity inserts e and emits AddEntityEvent. Derived indices are only
// resynchronised on the next CommitProcess.
func (d *Document) AddEntity(e entity.Entity) error {
	if d.dispatching {
		return ErrReentrantMutation
	}
	if err := d.checkAdd(e, d.has); err != nil {
		return err
	}
	d.applyAdd(e)
	return nil
}

// RemoveEntity excises the entity with the given id and emits
// RemoveEntityEvent
func (d *Document) RemoveEntity(id entity.ID) error {
	if d.dispatching {
		return ErrReentrantMutation
	}
	if !d.has(id) {
		return fmt.Errorf("remove %s: %w", id, ErrEntityNotFound)
	}
	d.applyRemove(id)
	return nil
}

// CommitProcess emits CommitProcessEvent once
func (d *Document) CommitProcess() error {
	if d.dispatching {
		return ErrReentrantMutation
	}
	d.logger.Debug().Int("entities", len(d.entities)).Msg("commit process")
	d.dispatch(func() { d.commitProcess.Emit(CommitProcessEvent{}) })
	return nil
}

// Execute stages the adds and removes made by fn and applies them as one
// batch followed by a single CommitProcessEvent. If fn or any staged
// operation fails, the document is left untouched and nothing is emitted.
func (d *Document) Execute(fn func(*Batch) error) error {
	if d.dispatching {
		return ErrReentrantMutation
	}

	b := &Batch{}
	if err := fn(b); err != nil {
		return err
	}
	if err := d.validate(b); err != nil {
		return err
	}

	for _, op := range b.ops {
		if op.isAdd {
			d.applyAdd(op.add)
		} else {
			d.applyRemove(op.remove)
		}
	}
	return d.CommitProcess()
}

// validate replays the batch against the id set without touching it
func (d *Document) validate(b *Batch) error {
	added := make(map[entity.ID]bool)
	present := func(id entity.ID) bool {
		if v, ok := added[id]; ok {
			return v
		}
		return d.has(id)
	}

	for _, op := range b.ops {
		if op.isAdd {
			if err := d.checkAdd(op.add, present); err != nil {
				return err
			}
			added[op.add.ID()] = true
			continue
		}
		if !present(op.remove) {
			return fmt.Errorf("remove %s: %w", op.remove, ErrEntityNotFound)
		}
		added[op.remove] = false
	}
	return nil
}

func (d *Document) checkAdd(e entity.Entity, present func(entity.ID) bool) error {
	if e == nil {
		return ErrNilEntity
	}
	if present(e.ID()) {
		return fmt.Errorf("add %s %s: %w", e.Kind(), e.ID(), ErrDuplicateEntity)
	}
	return nil
}

func (d *Document) has(id entity.ID) bool {
	_, ok := d.entities[id]
	return ok
}

func (d *Document) applyAdd(e entity.Entity) {
	d.entities[e.ID()] = e
	d.logger.Debug().Str("kind", e.Kind().String()).Stringer("id", e.ID()).Msg("add entity")
	d.dispatch(func() { d.addEntity.Emit(AddEntityEvent{Entity: e}) })
}

func (d *Document) applyRemove(id entity.ID) {
	e := d.entities[id]
	delete(d.entities, id)
	d.logger.Debug().Str("kind", e.Kind().String()).Stringer("id", id).Msg("remove entity")
	d.dispatch(func() { d.removeEntity.Emit(RemoveEntityEvent{Entity: e}) })
}

func (d *Document) dispatch(emit func()) {
	d.dispatching = true
	defer func() { d.dispatching = false }()
	emit()
}

// EntityByID looks up an entity
func (d *Document) EntityByID(id entity.ID) (entity.Entity, bool) {
	e, ok := d.entities[id]
	return e, ok
}

// Len returns the number of entities
func (d *Document) Len() int {
	return len(d.entities)
}

// Entities returns a snapshot ordered by kind, then id
func (d *Document) Entities() []entity.Entity {
	out := make([]entity.Entity, 0, len(d.entities))
	for _, e := range d.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind() != out[j].Kind() {
			return out[i].Kind() < out[j].Kind()
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}

// Bounds merges the bounding boxes of every entity; empty for an empty document
func (d *Document) Bounds() geo.Area {
	box := geo.EmptyArea()
	for _, e := range d.entities {
		box = box.Merge(e.BoundingBox())
	}
	return box
}

// Batch collects the operations of one Execute call
type Batch struct {
	ops []batchOp
}

type batchOp struct {
	isAdd  bool
	add    entity.Entity
	remove entity.ID
}

// Add stages an insertion
func (b *Batch) Add(e entity.Entity) {
	b.ops = append(b.ops, batchOp{isAdd: true, add: e})
}

// Remove stages a removal
func (b *Batch) Remove(id entity.ID) {
	b.ops = append(b.ops, batchOp{remove: id})
}

// Replace stages the swap of an entity for an edited version with the
// same id
func (b *Batch) Replace(old, updated entity.Entity) {
	b.Remove(old.ID())
	b.Add(updated)
}

// Len returns the number of staged operations
func (b *Batch) Len() int {
	return len(b.ops)
}
