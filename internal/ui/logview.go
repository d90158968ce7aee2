package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nxadm/tail"
	"github.com/rs/zerolog"
)

// LogViewOptions configures ViewLog.
type LogViewOptions struct {
	Path    string
	Lines   int  // trailing lines printed first
	Follow  bool // keep streaming appended lines until ctx is done
	Raw     bool // print JSON lines as stored
	NoColor bool
	Out     io.Writer // default os.Stdout
}

// ViewLog prints the tail of the launcher log and optionally follows it,
// surviving rotation. JSON records are rendered human-readable unless Raw.
func ViewLog(ctx context.Context, opts LogViewOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	emit := lineWriter(out, opts.Raw, opts.NoColor)

	f, err := os.Open(opts.Path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	offset, err := printRecentLines(f, opts.Lines, emit)
	_ = f.Close()
	if err != nil {
		return err
	}
	if !opts.Follow {
		return nil
	}

	t, err := tail.TailFile(opts.Path, tail.Config{
		Follow:    true,
		ReOpen:    true, // launcher.log rotates to launcher.log.1
		MustExist: false,
		Location:  &tail.SeekInfo{Offset: offset, Whence: io.SeekStart},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("follow log: %w", err)
	}
	defer t.Cleanup()
	defer func() { _ = t.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-t.Lines:
			if !ok || line == nil {
				return nil
			}
			if line.Err != nil {
				return line.Err
			}
			emit(line.Text)
		}
	}
}

// lineWriter returns a printer for one log line. zerolog's console writer
// parses the JSON record; anything it cannot parse is printed verbatim.
func lineWriter(out io.Writer, raw, noColor bool) func(string) {
	if raw {
		return func(s string) { fmt.Fprintln(out, s) }
	}
	cw := zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       noColor,
		TimeFormat:    time.DateTime,
		FieldsExclude: []string{"run_id"},
	}
	return func(s string) {
		if strings.TrimSpace(s) == "" {
			return
		}
		if _, err := cw.Write([]byte(s)); err != nil {
			fmt.Fprintln(out, s)
		}
	}
}

// printRecentLines emits the last maxLines lines of f and returns the
// offset just past what was read.
func printRecentLines(f *os.File, maxLines int, emit func(string)) (int64, error) {
	scanner := bufio.NewScanner(f)
	bufSize := 512 * 1024
	scanner.Buffer(make([]byte, bufSize), bufSize)

	var offset int64
	buf := make([]string, 0, max(maxLines, 0))
	for scanner.Scan() {
		offset += int64(len(scanner.Bytes())) + 1
		if maxLines <= 0 {
			continue
		}
		if len(buf) == maxLines {
			copy(buf, buf[1:])
			buf[len(buf)-1] = scanner.Text()
		} else {
			buf = append(buf, scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if info, err := f.Stat(); err == nil && offset > info.Size() {
		offset = info.Size() // last line had no trailing newline
	}
	for _, line := range buf {
		emit(line)
	}
	return offset, nil
}
