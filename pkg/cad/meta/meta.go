// Package meta holds the classification objects entities point at:
// layers, blocks and free-form meta information. Entities reference layers
// and blocks by name only; a Registry resolves the names.
package meta

import (
	"errors"
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

// DefaultLayer is the layer every document starts with
const DefaultLayer = "0"

var (
	// ErrEmptyName is returned when registering a layer or block without a name
	ErrEmptyName = errors.New("meta: empty name")
	// ErrDuplicate is returned when a name is already registered
	ErrDuplicate = errors.New("meta: name already registered")
)

// Color represents an RGBA colour with components in 0.0-1.0
type Color struct {
	R, G, B, A float64
}

// Layer is a named drawing layer
type Layer struct {
	Name      string
	Color     Color
	LineWidth float64 // Line width in user units, 0 = painter default
	Frozen    bool    // Frozen layers are neither drawn nor editable
}

// Block is a named group definition entities can belong to
type Block struct {
	Name string
	Base geo.Coordinate // Insertion base point
}

// MetaInfo carries free-form key/value annotations shared between
// entities. It is immutable once built; With returns a copy.
type MetaInfo struct {
	values map[string]string
}

// NewMetaInfo creates meta info from a key/value map (the map is copied)
func NewMetaInfo(values map[string]string) *MetaInfo {
	m := &MetaInfo{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get returns the value stored for key
func (m *MetaInfo) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// With returns a new MetaInfo with key set to value
func (m *MetaInfo) With(key, value string) *MetaInfo {
	values := map[string]string{key: value}
	if m != nil {
		for k, v := range m.values {
			if k != key {
				values[k] = v
			}
		}
	}
	return NewMetaInfo(values)
}

// Keys returns the sorted keys
func (m *MetaInfo) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Registry provides lookup of layers and blocks by name
type Registry struct {
	layers map[string]*Layer
	blocks map[string]*Block
}

// NewRegistry creates a registry holding only the default layer
func NewRegistry() *Registry {
	r := &Registry{
		layers: make(map[string]*Layer),
		blocks: make(map[string]*Block),
	}
	r.layers[DefaultLayer] = &Layer{Name: DefaultLayer, Color: Color{R: 1, G: 1, B: 1, A: 1}}
	return r
}

// AddLayer registers a layer
func (r *Registry) AddLayer(layer Layer) error {
	if layer.Name == "" {
		return ErrEmptyName
	}
	if _, exists := r.layers[layer.Name]; exists {
		return fmt.Errorf("layer %q: %w", layer.Name, ErrDuplicate)
	}
	l := layer
	r.layers[layer.Name] = &l
	return nil
}

// ReplaceLayer registers or overwrites a layer
func (r *Registry) ReplaceLayer(layer Layer) error {
	if layer.Name == "" {
		return ErrEmptyName
	}
	l := layer
	r.layers[layer.Name] = &l
	return nil
}

// Layer looks a layer up by name
func (r *Registry) Layer(name string) (*Layer, bool) {
	layer, ok := r.layers[name]
	return layer, ok
}

// Layers returns all layers sorted by name
func (r *Registry) Layers() []*Layer {
	layers := make([]*Layer, 0, len(r.layers))
	for _, l := range r.layers {
		layers = append(layers, l)
	}
	sort.Slice(layers, func(i, j int) bool { return layers[i].Name < layers[j].Name })
	return layers
}

// AddBlock registers a block
func (r *Registry) AddBlock(block Block) error {
	if block.Name == "" {
		return ErrEmptyName
	}
	if _, exists := r.blocks[block.Name]; exists {
		return fmt.Errorf("block %q: %w", block.Name, ErrDuplicate)
	}
	b := block
	r.blocks[block.Name] = &b
	return nil
}

// Block looks a block up by name
func (r *Registry) Block(name string) (*Block, bool) {
	block, ok := r.blocks[name]
	return block, ok
}

// Blocks returns the registered blocks sorted by name
func (r *Registry) Blocks() []*Block {
	blocks := make([]*Block, 0, len(r.blocks))
	for _, b := range r.blocks {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Name < blocks[j].Name })
	return blocks
}
