// Package config stores persistent viewer settings as JSON
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("config: invalid")

// AppConfig stores persistent application settings. Width and Height are
// the default device size for render and view. Background is an SVG colour
// name or #rrggbb; a GridSpacing of 0 disables the grid.
type AppConfig struct {
	ZoomMin       float64 `json:"zoom_min"`
	ZoomMax       float64 `json:"zoom_max"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Background    string  `json:"background"`
	GridSpacing   float64 `json:"grid_spacing"`
	LogLevel      string  `json:"log_level"`
	DebugQuadTree bool    `json:"debug_quadtree"`
}

// Default returns the settings used when no file exists
func Default() *AppConfig {
	return &AppConfig{
		ZoomMin:     0.05,
		ZoomMax:     20,
		Width:       1024,
		Height:      768,
		Background:  "#001a00",
		GridSpacing: 10,
		LogLevel:    "info",
	}
}

// Path returns the platform config file location
func Path() (string, error) {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "OpenTraceCAD", "config.json"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "opentracecad", "config.json"), nil
}

// Load reads the configuration at path. A missing file yields Default;
// fields absent from the file keep their default values.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration, creating the directory if needed
func Save(path string, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks ranges and the background colour
func (c *AppConfig) Validate() error {
	if c.ZoomMin <= 0 || c.ZoomMin >= c.ZoomMax {
		return fmt.Errorf("%w: zoom range [%g, %g]", ErrInvalid, c.ZoomMin, c.ZoomMax)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.GridSpacing < 0 {
		return fmt.Errorf("%w: grid spacing %g", ErrInvalid, c.GridSpacing)
	}
	if _, err := ParseColor(c.Background); err != nil {
		return err
	}
	return nil
}

// BackgroundColor resolves Background
func (c *AppConfig) BackgroundColor() meta.Color {
	col, err := ParseColor(c.Background)
	if err != nil {
		return meta.Color{R: 0, G: 0.1, B: 0, A: 1}
	}
	return col
}

// ParseColor accepts an SVG colour name ("darkgreen") or #rrggbb
func ParseColor(s string) (meta.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if rgba, ok := colornames.Map[s]; ok {
		return meta.Color{
			R: float64(rgba.R) / 255,
			G: float64(rgba.G) / 255,
			B: float64(rgba.B) / 255,
			A: float64(rgba.A) / 255,
		}, nil
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok && len(hex) == 6 {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err == nil {
			return meta.Color{
				R: float64(v>>16&0xff) / 255,
				G: float64(v>>8&0xff) / 255,
				B: float64(v&0xff) / 255,
				A: 1,
			}, nil
		}
	}
	return meta.Color{}, fmt.Errorf("%w: colour %q", ErrInvalid, s)
}
