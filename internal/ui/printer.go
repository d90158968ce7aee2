package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Printer centralizes output formatting for commands.
// - Respects --output (text|json|yaml)
// - Uses ColorConfig for styling when printing text
type Printer struct {
	format string
	out    io.Writer
	quiet  bool
	Colors *ColorConfig
}

func NewPrinter(format string) Printer {
	return Printer{format: format, out: os.Stdout, Colors: NewColorConfig()}
}

// WithWriter returns a copy of p writing to w.
func (p Printer) WithWriter(w io.Writer) Printer {
	p.out = w
	return p
}

// Format returns the output format the printer was created with.
func (p Printer) Format() string { return p.format }

// Structured reports whether output should be machine-readable.
func (p Printer) Structured() bool { return p.format == "json" || p.format == "yaml" }

func (p Printer) w() io.Writer {
	if p.out == nil {
		return os.Stdout
	}
	return p.out
}

// Textf prints formatted text (always text path).
func (p Printer) Textf(format string, a ...any) { fmt.Fprintf(p.w(), format, a...) }

// JSON pretty-prints a JSON value.
func (p Printer) JSON(v any) {
	enc := json.NewEncoder(p.w())
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// YAML prints v as a YAML document.
func (p Printer) YAML(v any) {
	enc := yaml.NewEncoder(p.w())
	enc.SetIndent(2)
	_ = enc.Encode(v)
	_ = enc.Close()
}

// Structure prints v in the printer's structured format; false means the
// caller should render text itself.
func (p Printer) Structure(v any) bool {
	switch p.format {
	case "json":
		p.JSON(v)
	case "yaml":
		p.YAML(v)
	default:
		return false
	}
	return true
}

// Success prints a success line with themed prefix.
func (p Printer) Success(msg string) {
	c := p.Colors
	space := " "
	if len(msg) > 0 && (msg[0] == ' ' || msg[0] == '\t') {
		space = ""
	}
	if c.EmojiEnabled {
		fmt.Fprintf(p.w(), "%s%s%s\n", c.Success("✓"), space, msg)
	} else {
		fmt.Fprintf(p.w(), "%s%s%s\n", c.Success("[OK]"), space, msg)
	}
}

// Info prints an informational line.
func (p Printer) Info(msg string) {
	if p.quiet {
		return
	}
	c := p.Colors
	if c.EmojiEnabled {
		fmt.Fprintln(p.w(), c.Info("ℹ"), msg)
	} else {
		fmt.Fprintln(p.w(), c.Info("[INFO]"), msg)
	}
}

// Warn prints a warning line.
func (p Printer) Warn(msg string) {
	c := p.Colors
	if c.EmojiEnabled {
		fmt.Fprintln(p.w(), c.Warning("!"), msg)
	} else {
		fmt.Fprintln(p.w(), c.Warning("[WARN]"), msg)
	}
}

// Error prints an error line.
func (p Printer) Error(msg string) {
	c := p.Colors
	if c.EmojiEnabled {
		fmt.Fprintln(p.w(), c.Error("✗"), msg)
	} else {
		fmt.Fprintln(p.w(), c.Error("[ERR]"), msg)
	}
}

// Header prints a section header.
func (p Printer) Header(title string) {
	fmt.Fprintln(p.w(), p.Colors.Header(" "+title+" "))
}

// Section prints a section header with separator
func (p Printer) Section(title string) {
	fmt.Fprintln(p.w())
	fmt.Fprintln(p.w(), p.Colors.SubHeader(title))
	fmt.Fprintln(p.w(), p.Colors.Separator(40))
}

// KeyValueLine prints a key-value pair with proper formatting
func (p Printer) KeyValueLine(key, value, colorType string) {
	var coloredValue string
	switch colorType {
	case "blue":
		coloredValue = p.Colors.Apply(p.Colors.Theme.Info, value)
	case "yellow":
		coloredValue = p.Colors.Apply(p.Colors.Theme.Warning, value)
	case "green":
		coloredValue = p.Colors.Apply(p.Colors.Theme.Success, value)
	case "red":
		coloredValue = p.Colors.Apply(p.Colors.Theme.Error, value)
	case "dim":
		coloredValue = p.Colors.Apply(p.Colors.Theme.Description, value)
	default:
		coloredValue = p.Colors.Value(value)
	}
	fmt.Fprintf(p.w(), "%s %s\n", p.Colors.Label(key+":"), coloredValue)
}

// ErrorMessage prints a structured error.
func (p Printer) ErrorMessage(e ErrorMessage) {
	fmt.Fprintln(p.w(), e.Format(p.Colors))
}
