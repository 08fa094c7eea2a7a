package cmd

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCAD/internal/propexpr"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/document"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/entity"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

var (
	outputJSON   bool
	showEntities bool
	showProps    bool
)

// DrawingInfo is the structured form of `otcad info`
type DrawingInfo struct {
	File     string         `json:"file"`
	Layers   []LayerInfo    `json:"layers"`
	Blocks   []string       `json:"blocks,omitempty"`
	Counts   map[string]int `json:"counts"`
	Bounds   *BoundsInfo    `json:"bounds,omitempty"`
	Entities []EntityInfo   `json:"entities,omitempty"`
}

// LayerInfo describes one layer
type LayerInfo struct {
	Name      string     `json:"name"`
	Color     [4]float64 `json:"color"`
	LineWidth float64    `json:"line_width,omitempty"`
	Frozen    bool       `json:"frozen,omitempty"`
}

// BoundsInfo is an axis-aligned extent
type BoundsInfo struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// EntityInfo describes one entity
type EntityInfo struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	Layer      string            `json:"layer"`
	Block      string            `json:"block,omitempty"`
	Bounds     *BoundsInfo       `json:"bounds,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

var infoCmd = &cobra.Command{
	Use:   "info <drawing>",
	Short: "Show drawing layers, entities and extents",
	Long: `Load a drawing and print a summary of its layers, blocks, entity counts
and overall extents.

Examples:
  otcad info part.sexp
  otcad info part.sexp --entities --props
  otcad info part.sexp --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&outputJSON, "json", false, "output JSON")
	infoCmd.Flags().BoolVar(&showEntities, "entities", false, "list every entity")
	infoCmd.Flags().BoolVar(&showProps, "props", false, "include entity properties (implies --entities)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	doc, err := loadDrawing(args[0])
	if err != nil {
		return err
	}
	info := describe(args[0], doc, showEntities || showProps, showProps)

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	printInfo(info)
	return nil
}

func describe(file string, doc *document.Document, entities, props bool) DrawingInfo {
	registry := doc.Registry()
	info := DrawingInfo{File: file, Counts: make(map[string]int)}

	for _, l := range registry.Layers() {
		c := l.Color
		info.Layers = append(info.Layers, LayerInfo{
			Name:      l.Name,
			Color:     [4]float64{c.R, c.G, c.B, c.A},
			LineWidth: l.LineWidth,
			Frozen:    l.Frozen,
		})
	}
	for _, b := range registry.Blocks() {
		info.Blocks = append(info.Blocks, b.Name)
	}
	info.Bounds = boundsInfo(doc.Bounds())

	for _, e := range doc.Entities() {
		info.Counts[e.Kind().String()]++
		if !entities {
			continue
		}
		ei := EntityInfo{
			ID:     e.ID().String(),
			Kind:   e.Kind().String(),
			Layer:  e.Layer(),
			Block:  e.Block(),
			Bounds: boundsInfo(e.BoundingBox()),
		}
		if props {
			ei.Properties = formatProperties(e.AvailableProperties())
		}
		info.Entities = append(info.Entities, ei)
	}
	return info
}

func formatProperties(props entity.Properties) map[string]string {
	out := make(map[string]string, len(props))
	for _, k := range props.Keys() {
		out[k] = propexpr.Format(props[k])
	}
	return out
}

func boundsInfo(a geo.Area) *BoundsInfo {
	if a.IsEmpty() {
		return nil
	}
	return &BoundsInfo{MinX: a.MinP.X, MinY: a.MinP.Y, MaxX: a.MaxP.X, MaxY: a.MaxP.Y}
}

func printInfo(info DrawingInfo) {
	fmt.Printf("Drawing: %s\n\n", info.File)

	fmt.Printf("Layers (%d):\n", len(info.Layers))
	for _, l := range info.Layers {
		flags := ""
		if l.Frozen {
			flags = " frozen"
		}
		fmt.Printf("  %-20s rgba(%.2f, %.2f, %.2f, %.2f) width %.3g%s\n",
			l.Name, l.Color[0], l.Color[1], l.Color[2], l.Color[3], l.LineWidth, flags)
	}
	if len(info.Blocks) > 0 {
		fmt.Printf("Blocks: %v\n", info.Blocks)
	}

	fmt.Println("\nEntities:")
	total := 0
	for _, kind := range []entity.Kind{entity.KindPoint, entity.KindLine, entity.KindCircle, entity.KindArc, entity.KindDimRadial} {
		if n := info.Counts[kind.String()]; n > 0 {
			fmt.Printf("  %-10s %6d\n", kind, n)
			total += n
		}
	}
	fmt.Printf("  %-10s %6d\n", "total", total)

	if b := info.Bounds; b != nil {
		fmt.Printf("\nExtents: (%.3f, %.3f) - (%.3f, %.3f), %.3f x %.3f\n",
			b.MinX, b.MinY, b.MaxX, b.MaxY, b.MaxX-b.MinX, b.MaxY-b.MinY)
	}

	for _, e := range info.Entities {
		fmt.Printf("\n%s %s layer=%q", e.Kind, e.ID, e.Layer)
		if e.Block != "" {
			fmt.Printf(" block=%q", e.Block)
		}
		fmt.Println()
		for _, k := range slices.Sorted(maps.Keys(e.Properties)) {
			fmt.Printf("  %-18s %s\n", k, e.Properties[k])
		}
	}
}
