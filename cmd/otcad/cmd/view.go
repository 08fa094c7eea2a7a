package cmd

import (
	"fmt"
	"os"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/unit"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/document"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/drawitems"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/painter/giopainter"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/viewer/renderer"
)

var viewCmd = &cobra.Command{
	Use:   "view <drawing>",
	Short: "View a drawing in an interactive window",
	Long: `Opens a drawing in a Gio window.

Controls:
  Scroll Wheel      - Zoom at the cursor
  Left Drag         - Pan
  Right Click       - Select entities under the cursor
  Space             - Fit drawing to window
  C                 - Clear selection
  Q / Escape        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	doc, err := loadDrawing(args[0])
	if err != nil {
		return err
	}

	go func() {
		w := new(app.Window)
		w.Option(app.Title("OpenTraceCAD - " + args[0]))
		w.Option(app.Size(unit.Dp(float32(cfg.Width)), unit.Dp(float32(cfg.Height))))

		if err := runViewerWindow(w, doc); err != nil {
			logger.Fatal().Err(err).Msg("viewer failed")
		}
		os.Exit(0)
	}()
	app.Main()
	return nil
}

// viewer holds the window's interaction state
type viewer struct {
	r        *renderer.DocumentRenderer
	cursor   *drawitems.Cursor
	fitted   bool
	dragging bool
	last     f32.Point
}

func runViewerWindow(w *app.Window, doc *document.Document) error {
	r, err := newRenderer(doc, renderer.Options{
		CreatePainter: giopainter.Factory(true),
		DebugQuadTree: cfg.DebugQuadTree,
	})
	if err != nil {
		return err
	}
	defer r.Close()

	v := &viewer{r: r, cursor: drawitems.NewCursor()}
	r.AddForegroundItem(v.cursor)

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			ops.Reset()
			gtx := app.NewContext(&ops, e)

			r.NewDeviceSize(e.Size.X, e.Size.Y)
			if !v.fitted {
				if err := r.FitTo(r.Bounds()); err != nil {
					return err
				}
				v.fitted = true
			}

			quit, err := v.handleEvents(gtx)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}

			err = r.Render(func(p painter.Painter) {
				if gp, ok := p.(*giopainter.Painter); ok {
					gp.Add(gtx.Ops)
				}
			})
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}

			area := clip.Rect{Max: e.Size}.Push(gtx.Ops)
			event.Op(gtx.Ops, v)
			area.Pop()

			e.Frame(gtx.Ops)
		}
	}
}

// handleEvents applies queued input; it reports whether to quit
func (v *viewer) handleEvents(gtx layout.Context) (bool, error) {
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: key.NameEscape},
			key.Filter{Name: "Q"},
			key.Filter{Name: key.NameSpace},
			key.Filter{Name: "C"},
		)
		if !ok {
			break
		}
		ke, ok := ev.(key.Event)
		if !ok || ke.State != key.Press {
			continue
		}
		switch ke.Name {
		case key.NameEscape, "Q":
			return true, nil
		case key.NameSpace:
			if err := v.r.FitTo(v.r.Bounds()); err != nil {
				return false, err
			}
		case "C":
			v.r.ClearSelection()
		}
		gtx.Execute(op.InvalidateCmd{})
	}

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  v,
			Kinds:   pointer.Press | pointer.Release | pointer.Drag | pointer.Move | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}

		var err error
		switch pe.Kind {
		case pointer.Press:
			if pe.Buttons == pointer.ButtonSecondary {
				v.selectAt(pe.Position)
			} else {
				v.dragging = true
				v.last = pe.Position
			}
		case pointer.Release:
			v.dragging = false
		case pointer.Drag:
			if v.dragging {
				d := pe.Position.Sub(v.last)
				v.last = pe.Position
				err = v.r.Pan(float64(d.X), float64(d.Y))
			}
		case pointer.Scroll:
			factor := 1.0 - float64(pe.Scroll.Y)*0.01
			if factor > 0 {
				err = v.r.ScrollTo(factor, float64(pe.Position.X), float64(pe.Position.Y))
			}
		}
		if err != nil {
			return false, err
		}
		v.moveCursor(pe.Position)
		gtx.Execute(op.InvalidateCmd{})
	}
	return false, nil
}

func (v *viewer) userPoint(pos f32.Point) (geo.Coordinate, bool) {
	p, err := v.r.CachedPainter(painter.Document)
	if err != nil {
		return geo.Coordinate{}, false
	}
	x, y := p.DeviceToUser(float64(pos.X), float64(pos.Y))
	return geo.Coord(x, y), true
}

func (v *viewer) moveCursor(pos f32.Point) {
	if c, ok := v.userPoint(pos); ok {
		v.cursor.MoveTo(c)
	}
}

// selectAt selects everything touching a small box around pos
func (v *viewer) selectAt(pos f32.Point) {
	p, err := v.r.CachedPainter(painter.Document)
	if err != nil {
		return
	}
	c, _ := v.userPoint(pos)
	reach, _ := p.DeviceToUserDistance(4, 0)
	if reach < 0 {
		reach = -reach
	}
	picked := v.r.Select(geo.NewArea(c, c).Increase(reach), false)
	logger.Debug().Int("selected", len(picked)).Stringer("at", c).Msg("select")
}
