// Package logging builds the hclog loggers used across drape.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Options controls logger construction.
type Options struct {
	// Level is an hclog level name (trace, debug, info, warn, error, off).
	Level string
	// Verbose forces debug level when Level is empty.
	Verbose bool
	// Quiet silences everything below error.
	Quiet bool
	// JSON switches to JSON formatted output.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns the root "drape" logger.
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := hclog.Info
	switch {
	case opts.Level != "":
		if l := hclog.LevelFromString(strings.TrimSpace(opts.Level)); l != hclog.NoLevel {
			level = l
		}
	case opts.Quiet:
		level = hclog.Error
	case opts.Verbose:
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "drape",
		Output:     out,
		Level:      level,
		JSONFormat: opts.JSON,
	})
}

// Discard returns a logger that drops everything.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}

// OrDiscard returns l, or a null logger when l is nil.
func OrDiscard(l hclog.Logger) hclog.Logger {
	if l == nil {
		return hclog.NewNullLogger()
	}
	return l
}
