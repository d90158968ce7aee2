package ui

import "sync/atomic"

// Config holds the presentation settings taken from the persistent flags.
type Config struct {
	NoColor bool
	NoEmoji bool
	// Quiet drops informational lines from printers built by
	// NewPrinterFromGlobal; results, warnings and errors still print.
	Quiet bool
}

var global atomic.Pointer[Config]

// InitGlobal records the presentation settings for this run.
func InitGlobal(cfg Config) { global.Store(&cfg) }

// GetGlobal returns the settings recorded by InitGlobal, or zero values.
func GetGlobal() Config {
	if c := global.Load(); c != nil {
		return *c
	}
	return Config{}
}

// NewColorConfigFromGlobal creates a ColorConfig honoring --no-color and --no-emoji.
func NewColorConfigFromGlobal() *ColorConfig {
	cfg := GetGlobal()
	c := NewColorConfig()
	c.Enabled = c.Enabled && !cfg.NoColor
	c.EmojiEnabled = c.EmojiEnabled && !cfg.NoEmoji
	return c
}

// NewPrinterFromGlobal creates a Printer using the global settings.
func NewPrinterFromGlobal(format string) Printer {
	p := NewPrinter(format)
	p.Colors = NewColorConfigFromGlobal()
	p.quiet = GetGlobal().Quiet
	return p
}
