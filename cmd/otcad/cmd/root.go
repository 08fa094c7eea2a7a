package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCAD/internal/config"
	"github.com/OpenTraceLab/OpenTraceCAD/internal/logging"
	"github.com/OpenTraceLab/OpenTraceCAD/internal/propexpr"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/document"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/cad/sexpfile"
	"github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"
)

var (
	// Global flags
	verbose    bool
	configPath string
	logLevel   string
	logFile    string
	strict     bool

	cfg    *config.AppConfig
	logOut *logging.Log
)

var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "otcad",
	Short: "OpenTraceCAD - 2D CAD drawing tools",
	Long: `OpenTraceCAD (otcad) loads, edits and renders 2D CAD drawings stored as
s-expressions.

Examples:
  otcad info part.sexp                          # Layers, entities and extents
  otcad render part.sexp -o part.png            # Render to PNG
  otcad edit part.sexp --move 10,0 -o moved.sexp
  otcad view part.sexp                          # Interactive viewer`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/opentracecad/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to a file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "reject unknown drawing elements")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	path := configPath
	if path == "" {
		if path, err = config.Path(); err != nil {
			return err
		}
	}
	if cfg, err = config.Load(path); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}
	logOut, err = logging.New().FromPath(logFile).Level(level).Console(true).Make()
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	logger = logOut.Logger
	logger.Debug().Str("config", path).Msg("configuration loaded")
	return nil
}

func teardown(*cobra.Command, []string) {
	if logOut != nil {
		logOut.Close()
	}
}

func loadDrawing(path string) (*document.Document, error) {
	doc, err := sexpfile.Load(path, sexpfile.Options{
		Strict:          strict,
		Logger:          logger,
		DocumentOptions: []document.Option{document.WithLogger(logger)},
	})
	if err != nil {
		return nil, fmt.Errorf("error loading drawing: %w", err)
	}
	return doc, nil
}

// parseCoordinate accepts "x,y" or "(x, y)"
func parseCoordinate(p *propexpr.Parser, s string) (geo.Coordinate, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") {
		s = "(" + s + ")"
	}
	v, err := p.Parse(s)
	if err != nil {
		return geo.Coordinate{}, err
	}
	c, ok := v.(geo.Coordinate)
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("%q is not a coordinate", s)
	}
	return c, nil
}
