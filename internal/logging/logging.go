// Package logging sets up the launcher's structured log.
//
// Every run appends JSON lines to the log file; each line carries the run's
// run_id so interleaved runs can be told apart. With Debug set, the same
// events are also written to the console in human-readable form.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxSize is the size at which the log is rotated to <path>.1 on open.
const maxSize = 5 << 20

// Options configures New.
type Options struct {
	Path    string    // log file; empty disables the file sink
	Debug   bool      // debug level plus a console sink
	Console io.Writer // console sink for Debug (default os.Stderr)
	NoColor bool
}

// Logger is a zerolog.Logger bound to one launcher run.
type Logger struct {
	zerolog.Logger
	RunID string
	Path  string
	file  *os.File
}

// New opens the log file (rotating it when large) and returns a logger
// tagged with a fresh run_id. The caller must Close it.
func New(opts Options) (*Logger, error) {
	runID := uuid.NewString()
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	var writers []io.Writer
	var f *os.File
	if opts.Path != "" {
		var err error
		f, err = openFile(opts.Path)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
	}
	if opts.Debug {
		out := opts.Console
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    opts.NoColor,
			TimeFormat: time.Kitchen,
		})
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}

	zl := zerolog.New(w).Level(level).With().
		Timestamp().
		Str("run_id", runID).
		Logger()
	return &Logger{Logger: zl, RunID: runID, Path: opts.Path, file: f}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func openFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if info, err := os.Stat(path); err == nil && info.Size() > maxSize {
		_ = os.Rename(path, path+".1")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
