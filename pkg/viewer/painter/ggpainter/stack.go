package ggpainter

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter"
)

// Stack composites finished layer surfaces bottom to top into one image.
// Its Add method has the shape of a DocumentRenderer write-back.
type Stack struct {
	ctx    *gg.Context
	layers int
	err    error
}

// NewStack creates a transparent width x height composite
func NewStack(width, height int) (*Stack, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid device size %dx%d", width, height)
	}
	return &Stack{ctx: gg.NewContext(width, height)}, nil
}

// Add draws p's surface over the layers added so far. Painters from
// another backend are recorded as an error returned by Err.
func (s *Stack) Add(p painter.Painter) {
	gp, ok := p.(*Painter)
	if !ok {
		if s.err == nil {
			s.err = fmt.Errorf("cannot composite %T", p)
		}
		return
	}
	s.ctx.DrawImage(gg.ImageBufFromImage(gp.Image()), 0, 0)
	s.layers++
}

// Layers returns how many surfaces were composited
func (s *Stack) Layers() int { return s.layers }

// Err returns the first Add failure
func (s *Stack) Err() error { return s.err }

// Image returns the composite
func (s *Stack) Image() image.Image { return s.ctx.Image() }

// SavePNG writes the composite to a PNG file
func (s *Stack) SavePNG(path string) error {
	if err := s.ctx.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// EncodePNG writes the composite as PNG to w
func (s *Stack) EncodePNG(w io.Writer) error {
	return s.ctx.EncodePNG(w)
}

func (s *Stack) Close() error {
	return s.ctx.Close()
}
