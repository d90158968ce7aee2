package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// ProgressBar renders extraction progress reported as a percentage plus
// the name of the entry just written.
type ProgressBar struct {
	out        io.Writer
	label      string
	isTTY      bool
	lastUpdate time.Time
	lastStep   int // last 10% step printed without a TTY
	percent    int
	colors     *ColorConfig
	indent     string
}

// NewProgressBar creates a bar writing to out (stdout when nil). On a
// terminal it redraws in place; otherwise it prints a line every 10%.
func NewProgressBar(out io.Writer, label string) *ProgressBar {
	if out == nil {
		out = os.Stdout
	}
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	if isTTY {
		// Disable focus reporting so ^[[I/^[[O never lands in the bar.
		fmt.Fprint(out, "\033[?1004l")
		FlushStdinWithTimeout(10 * time.Millisecond)
	}
	return &ProgressBar{
		out:      out,
		label:    label,
		isTTY:    isTTY,
		lastStep: -1,
		colors:   NewColorConfigFromGlobal(),
		indent:   "  ",
	}
}

// SetIndent sets the indentation prefix for the progress bar output.
func (p *ProgressBar) SetIndent(indent string) { p.indent = indent }

// Update records percent and the current entry name.
func (p *ProgressBar) Update(percent int, name string) {
	p.percent = percent

	now := time.Now()
	if p.isTTY {
		if percent < 100 && now.Sub(p.lastUpdate) < 100*time.Millisecond {
			return
		}
		p.lastUpdate = now
		p.render(name)
		return
	}

	step := percent / 10 * 10
	if step > p.lastStep {
		p.lastStep = step
		fmt.Fprintf(p.out, "%s%s... %d%%\n", p.indent, p.label, step)
	}
}

func (p *ProgressBar) render(name string) {
	width := 80
	if f, ok := p.out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	// Format: "<indent><label> [████░░░░] 100%  <name>"
	barWidth := width - len(p.indent) - len(p.label) - 10 - 30
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 40 {
		barWidth = 40
	}
	nameWidth := width - len(p.indent) - len(p.label) - barWidth - 10
	fmt.Fprintf(p.out, "\r%s%s [%s] %3d%%  %s\033[K",
		p.indent, p.label, p.colors.Bar(p.percent, barWidth), p.percent,
		p.colors.Description(Truncate(name, nameWidth)))
}

// Finish completes the bar and moves to the next line.
func (p *ProgressBar) Finish() {
	if p.isTTY {
		fmt.Fprintln(p.out)
		FlushStdinWithTimeout(30 * time.Millisecond)
		return
	}
	if p.percent >= 100 && p.lastStep < 100 {
		fmt.Fprintf(p.out, "%s%s... 100%%\n", p.indent, p.label)
	}
}
