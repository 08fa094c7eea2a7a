package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
)

func TestLoadMissingReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.ZoomMax = 50
	cfg.Background = "navy"
	cfg.DebugQuadTree = true

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"grid_spacing": 5}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.GridSpacing)
	assert.Equal(t, Default().ZoomMax, cfg.ZoomMax)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{`},
		{"zoom range", `{"zoom_min": 2, "zoom_max": 1}`},
		{"size", `{"width": 0}`},
		{"grid", `{"grid_spacing": -1}`},
		{"colour", `{"background": "not-a-colour"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveValidates(t *testing.T) {
	cfg := Default()
	cfg.ZoomMin = 0
	err := Save(filepath.Join(t.TempDir(), "config.json"), cfg)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want meta.Color
	}{
		{"white", meta.Color{R: 1, G: 1, B: 1, A: 1}},
		{" Black ", meta.Color{A: 1}},
		{"#ff0000", meta.Color{R: 1, A: 1}},
		{"#00FF00", meta.Color{G: 1, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "#fff", "#gggggg", "blurple"} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInvalid, bad)
	}
}

func TestBackgroundColorFallback(t *testing.T) {
	cfg := &AppConfig{Background: "nope"}
	assert.Equal(t, meta.Color{G: 0.1, A: 1}, cfg.BackgroundColor())
	assert.InDelta(t, 0x1a/255.0, Default().BackgroundColor().G, 1e-12)
}

func TestPath(t *testing.T) {
	t.Setenv("APPDATA", "")
	t.Setenv("HOME", "/home/someone")
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/someone", ".config", "opentracecad", "config.json"), p)

	t.Setenv("APPDATA", "/appdata")
	p, err = Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/appdata", "OpenTraceCAD", "config.json"), p)
}
