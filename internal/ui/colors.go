package ui

import (
	"os"
	"strings"
)

// ANSI codes used by the theme.
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Underline = "\033[4m"

	Cyan          = "\033[36m"
	BrightBlack   = "\033[90m"
	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
)

// Theme defines the color scheme for different UI elements
type Theme struct {
	Success string
	Warning string
	Error   string
	Info    string

	Header      string
	SubHeader   string
	Label       string
	Value       string
	Command     string
	Description string
	Separator   string
	Prompt      string

	Progress string
	Complete string
	Pending  string
}

// DefaultTheme returns the default color theme
func DefaultTheme() *Theme {
	return &Theme{
		Success: BrightGreen,
		Warning: BrightYellow,
		Error:   BrightRed,
		Info:    BrightCyan,

		Header:      Bold + BrightCyan,
		SubHeader:   Bold + Cyan,
		Label:       Bold, // terminal default foreground stays readable on any background
		Value:       "",
		Command:     BrightGreen,
		Description: BrightBlack,
		Separator:   BrightBlack,
		Prompt:      Bold + BrightMagenta,

		Progress: BrightYellow,
		Complete: BrightGreen,
		Pending:  BrightBlack,
	}
}

// ColorConfig manages color output settings
type ColorConfig struct {
	Enabled      bool
	EmojiEnabled bool
	Theme        *Theme
}

// NewColorConfig honours NO_COLOR and dumb terminals.
func NewColorConfig() *ColorConfig {
	term := os.Getenv("TERM")
	enabled := os.Getenv("NO_COLOR") == "" && term != "dumb" && term != ""
	return &ColorConfig{
		Enabled:      enabled,
		EmojiEnabled: true,
		Theme:        DefaultTheme(),
	}
}

// Apply applies a color to text if colors are enabled
func (c *ColorConfig) Apply(color, text string) string {
	if !c.Enabled || color == "" {
		return text
	}
	return color + text + Reset
}

func (c *ColorConfig) Success(text string) string     { return c.Apply(c.Theme.Success, text) }
func (c *ColorConfig) Warning(text string) string     { return c.Apply(c.Theme.Warning, text) }
func (c *ColorConfig) Error(text string) string       { return c.Apply(c.Theme.Error, text) }
func (c *ColorConfig) Info(text string) string        { return c.Apply(c.Theme.Info, text) }
func (c *ColorConfig) Header(text string) string      { return c.Apply(c.Theme.Header, text) }
func (c *ColorConfig) SubHeader(text string) string   { return c.Apply(c.Theme.SubHeader, text) }
func (c *ColorConfig) Label(text string) string       { return c.Apply(c.Theme.Label, text) }
func (c *ColorConfig) Value(text string) string       { return c.Apply(c.Theme.Value, text) }
func (c *ColorConfig) Command(text string) string     { return c.Apply(c.Theme.Command, text) }
func (c *ColorConfig) Description(text string) string { return c.Apply(c.Theme.Description, text) }
func (c *ColorConfig) Prompt(text string) string      { return c.Apply(c.Theme.Prompt, text) }

// Separator returns a colored separator line
func (c *ColorConfig) Separator(width int) string {
	return c.Apply(c.Theme.Separator, strings.Repeat("─", width))
}

// StatusIcon returns the icon for a check or version status. Without
// emoji it falls back to bracketed tags.
func (c *ColorConfig) StatusIcon(status string) string {
	var glyph, tag, color string
	switch strings.ToLower(status) {
	case "ok", "success", "up-to-date", "running":
		glyph, tag, color = "✓", "[OK]", c.Theme.Success
	case "warn", "warning", "unknown", "update-required":
		glyph, tag, color = "⚠", "[WARN]", c.Theme.Warning
	case "fail", "error", "failed", "blocked":
		glyph, tag, color = "✗", "[ERR]", c.Theme.Error
	case "info":
		glyph, tag, color = "ℹ", "[INFO]", c.Theme.Info
	default:
		glyph, tag, color = "○", "[ ]", c.Theme.Pending
	}
	if c.EmojiEnabled {
		return c.Apply(color, glyph)
	}
	return c.Apply(color, tag)
}

// Bar renders a percent bar of the given width.
func (c *ColorConfig) Bar(percent, width int) string {
	if width < 10 {
		width = 10
	}
	if percent < 0 {
		percent = 0
	}
	filled := width * percent / 100
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case percent >= 100:
		return c.Apply(c.Theme.Complete, bar)
	case percent >= 50:
		return c.Apply(c.Theme.Progress, bar)
	}
	return c.Apply(c.Theme.Pending, bar)
}
