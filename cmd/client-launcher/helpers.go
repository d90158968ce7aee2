package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xynnet/client-launcher/internal/exitcodes"
	"github.com/xynnet/client-launcher/internal/launcher"
	"github.com/xynnet/client-launcher/internal/locator"
	ui "github.com/xynnet/client-launcher/internal/ui"
	"github.com/xynnet/client-launcher/internal/update"
)

// silentErr marks an error that has already been reported to the user;
// Execute only maps it to an exit code.
type silentErr struct{ error }

func (e silentErr) Unwrap() error { return e.error }

// getPrinter returns a UI printer bound to the current --output flag.
func getPrinter() ui.Printer { return ui.NewPrinterFromGlobal(flagOutput) }

// exitRules maps launcher and update errors to exit codes. Malformed
// comes before the network rules because a bad version response wraps both.
var exitRules = []exitcodes.Rule{
	{Target: launcher.ErrVersionStale, Code: exitcodes.PreconditionFailed},
	{Target: launcher.ErrNoInstall, Code: exitcodes.PreconditionFailed},
	{Target: launcher.ErrNotFound, Code: exitcodes.NotFound},
	{Target: locator.ErrNotFound, Code: exitcodes.NotFound},
	{Target: launcher.ErrSpawnFailed, Code: exitcodes.ProcessError},
	{Target: update.ErrMalformed, Code: exitcodes.ValidationError},
	{Target: update.ErrNetwork, Code: exitcodes.NetworkError},
	{Target: update.ErrNotAvailable, Code: exitcodes.NetworkError},
}

// withExitCode attaches the exit code that matches a launcher error.
func withExitCode(err error) error { return exitcodes.Classify(err, exitRules) }

// explain turns a launcher error into a message with next steps.
func explain(err error, executable string) ui.ErrorMessage {
	msg := ui.ErrorMessage{Problem: err.Error()}
	switch {
	case errors.Is(err, launcher.ErrVersionStale):
		msg.Problem = "The installed client is out of date"
		msg.Actions = []string{"Install the latest update before playing"}
		msg.Hints = []string{"client-launcher update"}
	case errors.Is(err, launcher.ErrNoInstall):
		msg.Problem = "No install directory has been selected"
		msg.Hints = []string{"client-launcher setup <install-dir>"}
	case errors.Is(err, launcher.ErrNotFound), errors.Is(err, locator.ErrNotFound):
		msg.Problem = "Client executable not found"
		msg.Causes = []string{fmt.Sprintf("%s is not inside the install directory", executable)}
		msg.Hints = []string{"client-launcher doctor", "client-launcher setup <install-dir>"}
	case errors.Is(err, launcher.ErrSpawnFailed):
		msg.Causes = []string{"The executable is not runnable on this system or lacks permissions"}
		msg.Hints = []string{"client-launcher doctor"}
	case errors.Is(err, update.ErrMalformed):
		msg.Causes = []string{"The server returned a corrupt archive or response"}
		msg.Actions = []string{"Retry the update; the installed files were left unchanged"}
		msg.Hints = []string{"client-launcher update"}
	case errors.Is(err, update.ErrNetwork), errors.Is(err, update.ErrNotAvailable):
		msg.Causes = []string{"The update server is unreachable", "No network connection"}
		msg.Hints = []string{"client-launcher doctor"}
	}
	return msg
}

// report prints err in the current output format and returns it marked as
// already reported.
func report(d *Deps, err error) error {
	p := d.Printer
	if !p.Structure(map[string]string{"error": err.Error()}) {
		p.ErrorMessage(explain(err, d.Launcher.Local().ExecutableName))
	}
	return silentErr{withExitCode(err)}
}

// confirmed reports whether ans is an affirmative answer; empty means def.
func confirmed(ans string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(ans)) {
	case "":
		return def
	case "y", "yes":
		return true
	}
	return false
}
