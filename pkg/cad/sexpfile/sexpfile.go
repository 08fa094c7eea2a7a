// Package sexpfile reads and writes drawings stored as s-expressions:
//
//	(drawing
//	  (layer "0" (color 1 1 1) (width 0.2))
//	  (block "bolt" (base 0 0))
//	  (line (start 0 0) (end 10 0) (layer "0"))
//	  (circle (center 5 5) (radius 2))
//	  (arc (center 0 0) (radius 3) (angles 0 90) (cw))
//	  (point (at 1 1))
//	  (dimradial (definition 0 0) (text 4 4) (definition2 3 0) (leader 1)))
//
// Arc and text angles are in degrees. Every entity accepts optional
// (layer "name"), (block "name") and (meta (key "value") ...) children.
package sexpfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/chewxy/sexp"
	"github.com/rs/zerolog"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/document"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/entity"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/meta"
)

const rootNode = "drawing"

var (
	// ErrNotDrawing is returned when the input has no (drawing ...) root
	ErrNotDrawing = errors.New("sexpfile: not a drawing")
	// ErrUnknownElement is returned in strict mode for unrecognised nodes
	ErrUnknownElement = errors.New("sexpfile: unknown element")
)

// Options configures loading
type Options struct {
	// Strict rejects unknown elements instead of skipping them
	Strict bool
	Logger zerolog.Logger
	// DocumentOptions are passed to document.New
	DocumentOptions []document.Option
}

// Load reads a drawing file
func Load(path string, opts Options) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open drawing: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ParseString parses a drawing held in memory
func ParseString(input string, opts Options) (*document.Document, error) {
	return Parse(strings.NewReader(input), opts)
}

// Parse reads a drawing and returns it as a new document. All entities are
// added in one batch, so subscribers see a single commit.
func Parse(r io.Reader, opts Options) (doc *document.Document, err error) {
	// Head/Tail on malformed lists can panic inside the sexp package
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("malformed s-expression: %v", rec)
		}
	}()

	sexps, err := sexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	var root sexp.Sexp
	for _, s := range sexps {
		if nodeName(s) == rootNode {
			root = s
			break
		}
	}
	if root == nil {
		return nil, ErrNotDrawing
	}

	l := &loader{opts: opts, logger: opts.Logger}
	doc = document.New(opts.DocumentOptions...)
	if err := l.load(doc, root); err != nil {
		return nil, err
	}
	return doc, nil
}

type loader struct {
	opts   Options
	logger zerolog.Logger
}

func (l *loader) load(doc *document.Document, root sexp.Sexp) error {
	registry := doc.Registry()
	var entities []entity.Entity

	for _, node := range items(root)[1:] {
		name := nodeName(node)
		switch name {
		case "layer":
			layer, err := parseLayer(node)
			if err != nil {
				return err
			}
			if err := registry.ReplaceLayer(layer); err != nil {
				return err
			}
		case "block":
			block, err := parseBlock(node)
			if err != nil {
				return err
			}
			if err := registry.AddBlock(block); err != nil {
				return err
			}
		default:
			parse, ok := entityParsers[name]
			if !ok {
				if l.opts.Strict {
					return fmt.Errorf("(%s): %w", name, ErrUnknownElement)
				}
				l.logger.Warn().Str("element", name).Msg("skipping unknown element")
				continue
			}
			common, err := parseCommon(node)
			if err != nil {
				return err
			}
			e, err := parse(node, common)
			if err != nil {
				return fmt.Errorf("entity %d: %w", len(entities)+1, err)
			}
			entities = append(entities, e)
		}
	}

	// Entities may name layers the file never declared
	for _, e := range entities {
		if _, ok := registry.Layer(e.Layer()); !ok {
			l.logger.Debug().Str("layer", e.Layer()).Msg("registering undeclared layer")
			if err := registry.AddLayer(meta.Layer{Name: e.Layer(), Color: meta.Color{R: 1, G: 1, B: 1, A: 1}}); err != nil {
				return err
			}
		}
	}

	l.logger.Debug().Int("entities", len(entities)).Int("layers", len(registry.Layers())).Msg("drawing loaded")
	return doc.Execute(func(b *document.Batch) error {
		for _, e := range entities {
			b.Add(e)
		}
		return nil
	})
}

func parseLayer(node sexp.Sexp) (meta.Layer, error) {
	name, err := getString(node, 1)
	if err != nil {
		return meta.Layer{}, err
	}
	layer := meta.Layer{Name: name, Color: meta.Color{R: 1, G: 1, B: 1, A: 1}}

	if colorNode, ok := findNode(node, "color"); ok {
		var rgba [4]float64
		rgba[3] = 1
		n := len(items(colorNode)) - 1
		if n < 3 || n > 4 {
			return layer, fmt.Errorf("layer %q: (color r g b [a]) takes 3 or 4 values, got %d", name, n)
		}
		for i := 0; i < n; i++ {
			if rgba[i], err = getFloat(colorNode, i+1); err != nil {
				return layer, fmt.Errorf("layer %q: %w", name, err)
			}
		}
		layer.Color = meta.Color{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	}
	if width, ok, err := childFloat(node, "width"); err != nil {
		return layer, fmt.Errorf("layer %q: %w", name, err)
	} else if ok {
		layer.LineWidth = width
	}
	layer.Frozen = hasSymbol(node, "frozen")
	return layer, nil
}

func parseBlock(node sexp.Sexp) (meta.Block, error) {
	name, err := getString(node, 1)
	if err != nil {
		return meta.Block{}, err
	}
	block := meta.Block{Name: name}
	if base, ok, err := childCoordinate(node, "base"); err != nil {
		return block, fmt.Errorf("block %q: %w", name, err)
	} else if ok {
		block.Base = base
	}
	return block, nil
}

func parseCommon(node sexp.Sexp) (entity.Common, error) {
	var common entity.Common
	var err error
	if common.Layer, _, err = childString(node, "layer"); err != nil {
		return common, err
	}
	if common.Block, _, err = childString(node, "block"); err != nil {
		return common, err
	}
	if metaNode, ok := findNode(node, "meta"); ok {
		values := make(map[string]string)
		for _, kv := range items(metaNode)[1:] {
			key := nodeName(kv)
			if key == "" {
				return common, fmt.Errorf("(meta): expected (key \"value\") pairs")
			}
			if values[key], err = getString(kv, 1); err != nil {
				return common, err
			}
		}
		common.MetaInfo = meta.NewMetaInfo(values)
	}
	return common, nil
}

type entityParser func(node sexp.Sexp, common entity.Common) (entity.Entity, error)

var entityParsers = map[string]entityParser{
	"line":      parseLine,
	"circle":    parseCircle,
	"arc":       parseArc,
	"point":     parsePoint,
	"dimradial": parseDimRadial,
}

func parseLine(node sexp.Sexp, common entity.Common) (entity.Entity, error) {
	start, err := requireCoordinate(node, "start")
	if err != nil {
		return nil, err
	}
	end, err := requireCoordinate(node, "end")
	if err != nil {
		return nil, err
	}
	return entity.LineBuilder{Common: common, Start: start, End: end}.Build()
}

func parseCircle(node sexp.Sexp, common entity.Common) (entity.Entity, error) {
	center, err := requireCoordinate(node, "center")
	if err != nil {
		return nil, err
	}
	radius, err := requireFloat(node, "radius")
	if err != nil {
		return nil, err
	}
	return entity.CircleBuilder{Common: common, Center: center, Radius: radius}.Build()
}

func parseArc(node sexp.Sexp, common entity.Common) (entity.Entity, error) {
	center, err := requireCoordinate(node, "center")
	if err != nil {
		return nil, err
	}
	radius, err := requireFloat(node, "radius")
	if err != nil {
		return nil, err
	}
	angles, ok := findNode(node, "angles")
	if !ok {
		return nil, fmt.Errorf("(arc): missing (angles start end)")
	}
	start, err := getFloat(angles, 1)
	if err != nil {
		return nil, err
	}
	end, err := getFloat(angles, 2)
	if err != nil {
		return nil, err
	}
	return entity.ArcBuilder{
		Common:     common,
		Center:     center,
		Radius:     radius,
		StartAngle: radians(start),
		EndAngle:   radians(end),
		CW:         hasSymbol(node, "cw"),
	}.Build()
}

func parsePoint(node sexp.Sexp, common entity.Common) (entity.Entity, error) {
	at, err := requireCoordinate(node, "at")
	if err != nil {
		return nil, err
	}
	return entity.PointBuilder{Common: common, Location: at}.Build()
}

func parseDimRadial(node sexp.Sexp, common entity.Common) (entity.Entity, error) {
	def, err := requireCoordinate(node, "definition")
	if err != nil {
		return nil, err
	}
	def2, err := requireCoordinate(node, "definition2")
	if err != nil {
		return nil, err
	}
	text, ok, err := childCoordinate(node, "text")
	if err != nil {
		return nil, err
	}
	if !ok {
		text = def2
	}
	leader, _, err := childFloat(node, "leader")
	if err != nil {
		return nil, err
	}
	textAngle, _, err := childFloat(node, "text_angle")
	if err != nil {
		return nil, err
	}
	value, _, err := childString(node, "value")
	if err != nil {
		return nil, err
	}
	return entity.DimRadialBuilder{
		Common: common,
		DimensionBuilder: entity.DimensionBuilder{
			DefinitionPoint: def,
			MiddleOfText:    text,
			TextAngle:       radians(textAngle),
			ExplicitValue:   value,
		},
		DefinitionPoint2: def2,
		Leader:           leader,
	}.Build()
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
