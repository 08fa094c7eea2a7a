package sexpfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/document"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/entity"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

// Save writes doc to path, replacing the file
func Save(path string, doc *document.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create drawing: %w", err)
	}
	if err := Write(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write serialises doc in the format Parse reads. Layers and blocks come
// first, then entities in Document.Entities order.
func Write(w io.Writer, doc *document.Document) error {
	bw := bufio.NewWriter(w)
	registry := doc.Registry()

	fmt.Fprintln(bw, "(drawing")
	for _, layer := range registry.Layers() {
		c := layer.Color
		fmt.Fprintf(bw, "  (layer %s (color %s %s %s %s)", quote(layer.Name), num(c.R), num(c.G), num(c.B), num(c.A))
		if layer.LineWidth > 0 {
			fmt.Fprintf(bw, " (width %s)", num(layer.LineWidth))
		}
		if layer.Frozen {
			fmt.Fprint(bw, " (frozen)")
		}
		fmt.Fprintln(bw, ")")
	}
	for _, block := range registry.Blocks() {
		fmt.Fprintf(bw, "  (block %s %s)\n", quote(block.Name), coord("base", block.Base))
	}

	for _, e := range doc.Entities() {
		body, ok := entityBody(e)
		if !ok {
			return fmt.Errorf("cannot write %s %s", e.Kind(), e.ID())
		}
		fmt.Fprintf(bw, "  (%s %s%s)\n", e.Kind(), body, commonBody(e))
	}
	fmt.Fprintln(bw, ")")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write drawing: %w", err)
	}
	return nil
}

func entityBody(e entity.Entity) (string, bool) {
	switch v := e.(type) {
	case *entity.Line:
		return coord("start", v.Start()) + " " + coord("end", v.End()), true
	case *entity.Circle:
		return fmt.Sprintf("%s (radius %s)", coord("center", v.Center()), num(v.Radius())), true
	case *entity.Arc:
		s := fmt.Sprintf("%s (radius %s) (angles %s %s)", coord("center", v.Center()), num(v.Radius()),
			num(degrees(v.StartAngle())), num(degrees(v.EndAngle())))
		if !v.CCW() {
			s += " (cw)"
		}
		return s, true
	case *entity.Point:
		return coord("at", v.Location()), true
	case *entity.DimRadial:
		s := fmt.Sprintf("%s %s %s (leader %s)", coord("definition", v.DefinitionPoint()),
			coord("text", v.MiddleOfText()), coord("definition2", v.DefinitionPoint2()), num(v.Leader()))
		if a := v.TextAngle(); a != 0 {
			s += fmt.Sprintf(" (text_angle %s)", num(degrees(a)))
		}
		if val := v.ExplicitValue(); val != "" {
			s += fmt.Sprintf(" (value %s)", quote(val))
		}
		return s, true
	}
	return "", false
}

func commonBody(e entity.Entity) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, " (layer %s)", quote(e.Layer()))
	if b := e.Block(); b != "" {
		fmt.Fprintf(&sb, " (block %s)", quote(b))
	}
	if m := e.MetaInfo(); m != nil && len(m.Keys()) > 0 {
		sb.WriteString(" (meta")
		for _, k := range m.Keys() {
			v, _ := m.Get(k)
			fmt.Fprintf(&sb, " (%s %s)", k, quote(v))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func coord(key string, c geo.Coordinate) string {
	return fmt.Sprintf("(%s %s %s)", key, num(c.X), num(c.Y))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func quote(s string) string {
	return strconv.Quote(s)
}
