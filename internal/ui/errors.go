package ui

import (
	"strings"
)

// ErrorMessage is a user-facing error with suggested fixes.
type ErrorMessage struct {
	Problem string
	Causes  []string
	Actions []string
	Hints   []string // commands to try
}

// Format renders the error using the color theme. No ANSI codes are
// emitted when colors are disabled.
func (e ErrorMessage) Format(c *ColorConfig) string {
	var b strings.Builder
	if c.EmojiEnabled {
		b.WriteString(c.Error("✗ "))
	} else {
		b.WriteString(c.Error("[ERR] "))
	}
	b.WriteString(c.Header("Error"))
	b.WriteString("\n")
	if e.Problem != "" {
		b.WriteString("  ")
		b.WriteString(c.Label("Problem"))
		b.WriteString(": ")
		b.WriteString(e.Problem)
		b.WriteString("\n")
	}
	section := func(title, bullet string, items []string, style func(string) string) {
		if len(items) == 0 {
			return
		}
		b.WriteString("  ")
		b.WriteString(c.Label(title))
		b.WriteString(":\n")
		for _, it := range items {
			b.WriteString("   ")
			b.WriteString(bullet)
			b.WriteString(" ")
			b.WriteString(style(it))
			b.WriteString("\n")
		}
	}
	plain := func(s string) string { return s }
	section("Possible causes", "•", e.Causes, plain)
	section("Try", "→", e.Actions, plain)
	section("Hints", "·", e.Hints, c.Command)
	return strings.TrimRight(b.String(), "\n")
}
