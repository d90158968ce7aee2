package ui

import (
	"regexp"
	"strings"
)

// Table renders a monospaced table. Column widths come from the data,
// capped at maxWidth, unless widths fixes them (0 keeps the computed width).
func Table(c *ColorConfig, headers []string, rows [][]string, widths []int) string {
	const maxWidth = 80
	w := make([]int, len(headers))
	for i := range headers {
		w[i] = visibleLen(headers[i])
	}
	for _, r := range rows {
		for i := range r {
			if i >= len(w) {
				continue
			}
			if l := visibleLen(r[i]); l > w[i] {
				w[i] = min(l, maxWidth)
			}
		}
	}
	if len(widths) == len(w) {
		for i := range w {
			if widths[i] > 0 {
				w[i] = widths[i]
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(padCell(c.Label(h), w[i]))
	}
	b.WriteString("\n")
	sepLen := 0
	for i := range w {
		sepLen += w[i]
		if i < len(w)-1 {
			sepLen += 2
		}
	}
	b.WriteString(c.Separator(sepLen))
	b.WriteString("\n")
	for _, r := range rows {
		for i := range w {
			if i > 0 {
				b.WriteString("  ")
			}
			cell := ""
			if i < len(r) {
				cell = r[i]
			}
			if visibleLen(cell) > maxWidth {
				cell = Truncate(ansiRE.ReplaceAllString(cell, ""), maxWidth)
			}
			b.WriteString(padCell(cell, w[i]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func visibleLen(s string) int {
	return len([]rune(ansiRE.ReplaceAllString(s, "")))
}

func padCell(s string, width int) string {
	v := visibleLen(s)
	if v >= width {
		return s
	}
	return s + strings.Repeat(" ", width-v)
}
