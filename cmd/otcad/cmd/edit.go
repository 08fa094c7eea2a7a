package cmd

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCAD/internal/propexpr"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/document"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/entity"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/sexpfile"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

var (
	editOutput string
	editDryRun bool
	editFlags  editOptions
)

// editOptions selects entities and describes what to do with them
type editOptions struct {
	IDPrefix string
	Kind     string
	Layer    string

	Move    string
	Rotate  float64 // Degrees, counter-clockwise
	Scale   float64
	Center  string
	Mirror  string // "x1,y1:x2,y2"
	ToLayer string
	Set     []string
	Copy    bool
	Delete  bool
}

var editCmd = &cobra.Command{
	Use:   "edit <drawing>",
	Short: "Transform, restyle or delete entities",
	Long: `Apply edits to the entities of a drawing and write the result. Filters
select which entities are edited; all edits are applied as one batch.

Transforms run in the order --set, --move, --rotate, --scale, --mirror,
--to-layer. Rotation and scale use --center, or the centre of the selected
entities' extents.

Examples:
  otcad edit part.sexp --move 10,0 -o moved.sexp
  otcad edit part.sexp --kind circle --set radius=2.5
  otcad edit part.sexp --layer walls --rotate 90 --copy
  otcad edit part.sexp --id 3f2a --delete`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	f := editCmd.Flags()
	f.StringVarP(&editOutput, "output", "o", "", "output drawing (default overwrite input)")
	f.BoolVar(&editDryRun, "dry-run", false, "report the edits without writing")

	f.StringVar(&editFlags.IDPrefix, "id", "", "select entities whose id starts with this prefix")
	f.StringVar(&editFlags.Kind, "kind", "", "select entities of a kind (line, circle, arc, point, dimradial)")
	f.StringVar(&editFlags.Layer, "layer", "", "select entities on a layer")

	f.StringVar(&editFlags.Move, "move", "", "translate by dx,dy")
	f.Float64Var(&editFlags.Rotate, "rotate", 0, "rotate by degrees")
	f.Float64Var(&editFlags.Scale, "scale", 0, "scale uniformly by a factor")
	f.StringVar(&editFlags.Center, "center", "", "rotation/scale centre x,y")
	f.StringVar(&editFlags.Mirror, "mirror", "", "mirror about the axis x1,y1:x2,y2")
	f.StringVar(&editFlags.ToLayer, "to-layer", "", "move entities to a layer")
	f.StringArrayVar(&editFlags.Set, "set", nil, "set a property, key=value (repeatable)")
	f.BoolVar(&editFlags.Copy, "copy", false, "add transformed copies instead of replacing")
	f.BoolVar(&editFlags.Delete, "delete", false, "delete the selected entities")
}

func runEdit(cmd *cobra.Command, args []string) error {
	doc, err := loadDrawing(args[0])
	if err != nil {
		return err
	}

	summary, err := applyEdits(doc, editFlags)
	if err != nil {
		return err
	}
	fmt.Println(summary)
	if editDryRun {
		return nil
	}

	output := editOutput
	if output == "" {
		output = args[0]
	}
	if err := sexpfile.Save(output, doc); err != nil {
		return err
	}
	logger.Info().Str("output", output).Int("entities", doc.Len()).Msg("drawing saved")
	return nil
}

// editSummary reports what applyEdits changed
type editSummary struct {
	Selected int
	Changed  int
	Added    int
	Removed  int
}

func (s editSummary) String() string {
	return fmt.Sprintf("selected %d, changed %d, added %d, removed %d", s.Selected, s.Changed, s.Added, s.Removed)
}

// applyEdits runs the edits against doc in a single batch
func applyEdits(doc *document.Document, opts editOptions) (editSummary, error) {
	var summary editSummary

	parser, err := propexpr.NewParser()
	if err != nil {
		return summary, err
	}
	props, err := parser.ParseProperties(opts.Set)
	if err != nil {
		return summary, err
	}

	selected := selectEntities(doc, opts)
	summary.Selected = len(selected)
	if len(selected) == 0 {
		return summary, nil
	}

	transform, err := buildTransform(parser, opts, selected)
	if err != nil {
		return summary, err
	}
	if opts.ToLayer != "" {
		if _, ok := doc.Registry().Layer(opts.ToLayer); !ok {
			return summary, fmt.Errorf("layer %q does not exist", opts.ToLayer)
		}
	}

	err = doc.Execute(func(b *document.Batch) error {
		for _, e := range selected {
			if opts.Delete {
				b.Remove(e.ID())
				summary.Removed++
				continue
			}

			updated := e
			if len(props) > 0 {
				if updated, err = updated.SetProperties(props); err != nil {
					return fmt.Errorf("%s %s: %w", e.Kind(), e.ID(), err)
				}
			}
			updated = transform(updated)
			if opts.ToLayer != "" {
				updated = updated.Modify(opts.ToLayer, updated.MetaInfo(), updated.Block())
			}

			if opts.Copy {
				// Copy with a zero offset only renews the id
				b.Add(updated.Copy(geo.Coordinate{}))
				summary.Added++
				continue
			}
			if updated != e {
				b.Replace(e, updated)
				summary.Changed++
			}
		}
		return nil
	})
	return summary, err
}

// selectEntities returns the entities matching the filters, leaving out
// those on frozen layers
func selectEntities(doc *document.Document, opts editOptions) []entity.Entity {
	registry := doc.Registry()
	var out []entity.Entity
	for _, e := range doc.Entities() {
		if layer, ok := registry.Layer(e.Layer()); ok && layer.Frozen {
			continue
		}
		if opts.IDPrefix != "" && !strings.HasPrefix(e.ID().String(), strings.ToLower(opts.IDPrefix)) {
			continue
		}
		if opts.Kind != "" && e.Kind().String() != strings.ToLower(opts.Kind) {
			continue
		}
		if opts.Layer != "" && e.Layer() != opts.Layer {
			continue
		}
		out = append(out, e)
	}
	return out
}

// buildTransform composes the geometric edits into one function
func buildTransform(parser *propexpr.Parser, opts editOptions, selected []entity.Entity) (func(entity.Entity) entity.Entity, error) {
	var steps []func(entity.Entity) entity.Entity

	if opts.Move != "" {
		offset, err := parseCoordinate(parser, opts.Move)
		if err != nil {
			return nil, fmt.Errorf("--move: %w", err)
		}
		steps = append(steps, func(e entity.Entity) entity.Entity { return e.Move(offset) })
	}

	if opts.Rotate != 0 || opts.Scale != 0 {
		center, err := editCenter(parser, opts, selected)
		if err != nil {
			return nil, err
		}
		if opts.Rotate != 0 {
			angle := opts.Rotate * math.Pi / 180
			steps = append(steps, func(e entity.Entity) entity.Entity { return e.Rotate(center, angle) })
		}
		if opts.Scale != 0 {
			if opts.Scale < 0 {
				return nil, fmt.Errorf("--scale must be positive, got %g", opts.Scale)
			}
			factor := geo.Coord(opts.Scale, opts.Scale)
			steps = append(steps, func(e entity.Entity) entity.Entity { return e.Scale(center, factor) })
		}
	}

	if opts.Mirror != "" {
		first, second, ok := strings.Cut(opts.Mirror, ":")
		if !ok {
			return nil, fmt.Errorf("--mirror: expected x1,y1:x2,y2")
		}
		axis1, err := parseCoordinate(parser, first)
		if err != nil {
			return nil, fmt.Errorf("--mirror: %w", err)
		}
		axis2, err := parseCoordinate(parser, second)
		if err != nil {
			return nil, fmt.Errorf("--mirror: %w", err)
		}
		if axis1.Equal(axis2, geo.Tolerance) {
			return nil, fmt.Errorf("--mirror: axis points coincide")
		}
		steps = append(steps, func(e entity.Entity) entity.Entity { return e.Mirror(axis1, axis2) })
	}

	return func(e entity.Entity) entity.Entity {
		for _, step := range steps {
			e = step(e)
		}
		return e
	}, nil
}

func editCenter(parser *propexpr.Parser, opts editOptions, selected []entity.Entity) (geo.Coordinate, error) {
	if opts.Center != "" {
		c, err := parseCoordinate(parser, opts.Center)
		if err != nil {
			return c, fmt.Errorf("--center: %w", err)
		}
		return c, nil
	}
	extent := geo.EmptyArea()
	for _, e := range selected {
		extent = extent.Merge(e.BoundingBox())
	}
	return extent.Center(), nil
}
