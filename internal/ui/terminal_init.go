package ui

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

var terminalInitialized bool

// InitTerminal must run before lipgloss or bubbletea touch the terminal.
// termenv otherwise queries the background color via OSC 11 and the
// terminal's reply leaks into stdout; COLORFGBG answers it up front.
func InitTerminal() {
	if terminalInitialized {
		return
	}
	terminalInitialized = true

	if os.Getenv("COLORFGBG") == "" {
		os.Setenv("COLORFGBG", "0;15")
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprint(os.Stdout, "\033[?1004l") // focus reporting off
		time.Sleep(20 * time.Millisecond)
		FlushStdinWithTimeout(150 * time.Millisecond)
	}
}

// ResetTerminalAfterTUI cleans up after a bubbletea program exits so late
// terminal replies (cursor reports, OSC answers, focus events) do not show
// up in the shell.
func ResetTerminalAfterTUI() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	fmt.Fprint(os.Stdout, "\033[?1004l") // focus reporting
	fmt.Fprint(os.Stdout, "\033[?1003l") // all mouse tracking
	fmt.Fprint(os.Stdout, "\033[?1000l") // X10 mouse tracking
	fmt.Fprint(os.Stdout, "\033[?1006l") // SGR mouse mode
	fmt.Fprint(os.Stdout, "\033[?25h")   // show cursor
	fmt.Fprint(os.Stdout, "\r")

	time.Sleep(30 * time.Millisecond)
	FlushStdinWithTimeout(150 * time.Millisecond)
}
