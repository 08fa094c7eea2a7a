// Package logging builds the zerolog logger shared by the CLI and viewer
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Build collects logger settings
type Build struct {
	writer  io.Writer
	path    string
	level   zerolog.Level
	console bool
}

// Log is a built logger and the file it writes to, if any
type Log struct {
	Logger  zerolog.Logger
	LogFile *os.File
}

// New starts a build writing to stderr at info level
func New() *Build {
	return &Build{writer: os.Stderr, level: zerolog.InfoLevel}
}

// FromWriter sends log lines to w
func (b *Build) FromWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// FromPath appends log lines to a file, taking precedence over FromWriter
func (b *Build) FromPath(path string) *Build {
	b.path = path
	return b
}

// Level sets the minimum level; unknown names keep the current level
func (b *Build) Level(name string) *Build {
	if name == "" {
		return b
	}
	if lvl, err := zerolog.ParseLevel(strings.ToLower(name)); err == nil {
		b.level = lvl
	}
	return b
}

// Console switches to human-readable output
func (b *Build) Console(enabled bool) *Build {
	b.console = enabled
	return b
}

// Make opens the destination and creates the logger
func (b *Build) Make() (*Log, error) {
	log := new(Log)
	w := b.writer
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		log.LogFile = f
		w = zerolog.SyncWriter(f)
	}
	if b.console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: b.path != ""}
	}
	log.Logger = zerolog.New(w).Level(b.level).With().Timestamp().Logger()
	return log, nil
}

// Close closes the log file, if one was opened
func (l *Log) Close() error {
	if l.LogFile == nil {
		return nil
	}
	return l.LogFile.Close()
}
