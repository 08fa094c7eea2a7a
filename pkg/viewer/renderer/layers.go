package renderer

// LayerConfig controls which document layers are drawn
type LayerConfig struct {
	hidden map[string]bool
	solo   map[string]bool // Non-nil when ShowOnly is active
}

// NewLayerConfig creates a configuration with every layer visible
func NewLayerConfig() *LayerConfig {
	return &LayerConfig{hidden: make(map[string]bool)}
}

// SetVisible sets the visibility of one layer
func (lc *LayerConfig) SetVisible(layer string, visible bool) {
	if lc.solo != nil {
		lc.solo[layer] = visible
		return
	}
	if visible {
		delete(lc.hidden, layer)
	} else {
		lc.hidden[layer] = true
	}
}

// IsVisible reports whether a layer is drawn (default: true)
func (lc *LayerConfig) IsVisible(layer string) bool {
	if lc.solo != nil {
		return lc.solo[layer]
	}
	return !lc.hidden[layer]
}

// ShowAll makes every layer visible again
func (lc *LayerConfig) ShowAll() {
	lc.hidden = make(map[string]bool)
	lc.solo = nil
}

// ShowOnly hides every layer except the given ones
func (lc *LayerConfig) ShowOnly(layers ...string) {
	lc.solo = make(map[string]bool, len(layers))
	for _, layer := range layers {
		lc.solo[layer] = true
	}
}
