package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/xynnet/client-launcher/internal/auxdata"
	"github.com/xynnet/client-launcher/internal/config"
	"github.com/xynnet/client-launcher/internal/files"
	"github.com/xynnet/client-launcher/internal/launcher"
	"github.com/xynnet/client-launcher/internal/locator"
	"github.com/xynnet/client-launcher/internal/metrics"
	"github.com/xynnet/client-launcher/internal/process"
	ui "github.com/xynnet/client-launcher/internal/ui"
	"github.com/xynnet/client-launcher/internal/update"
	"github.com/xynnet/client-launcher/internal/window"
)

// Prompter abstracts interactive terminal I/O for testability.
type Prompter interface {
	// ReadLine displays the prompt and reads a line of input.
	ReadLine(prompt string) (string, error)
	// IsInteractive returns whether the terminal supports interactive input.
	IsInteractive() bool
}

// Orchestrator is the launcher surface the commands drive.
type Orchestrator interface {
	window.Actions
	SelectInstallAs(dir, executable string) error
}

// VersionChecker asks the update server for the latest version.
type VersionChecker interface {
	Check(ctx context.Context, current string) (*update.CheckResult, error)
}

// Deps holds all injectable dependencies for command handlers.
type Deps struct {
	Cfg      config.Config
	Launcher Orchestrator
	Oracle   VersionChecker
	Probe    process.Probe
	Printer  ui.Printer
	Prompter Prompter
	Output   io.Writer
	Log      zerolog.Logger

	Find      func(root, name string) (string, error)
	DiskFree  func(path string) (uint64, error)
	Resources func(ctx context.Context, diskPath, executable string) metrics.Snapshot
	IsTTY     func() bool
	RunWindow func(ctx context.Context, a window.Actions, opts window.Options) error
}

// ttyPrompter is the production implementation of Prompter.
// It uses /dev/tty when stdin is not a terminal (e.g., piped input).
type ttyPrompter struct{}

func (p *ttyPrompter) ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)

	var reader *bufio.Reader
	if term.IsTerminal(int(os.Stdin.Fd())) {
		reader = bufio.NewReader(os.Stdin)
	} else {
		tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			return "", fmt.Errorf("no interactive terminal available: %w", err)
		}
		defer tty.Close()
		reader = bufio.NewReader(tty)
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *ttyPrompter) IsInteractive() bool {
	if flagNonInteractive {
		return false
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}
	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err == nil {
		tty.Close()
		return true
	}
	return false
}

func stdoutIsTTY() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// newDeps creates production dependencies from the loaded settings.
func newDeps() *Deps {
	cfg := runCfg
	log := runLog.Logger

	api := update.NewClient(cfg.HTTPTimeout, cfg.InsecureTLS)
	oracle := update.NewOracle(api, cfg.VersionURL)
	probe := process.NewProbe()
	collector := metrics.New(metrics.DefaultSample)
	l := launcher.New(launcher.Options{
		Store:     files.New(cfg.ConfigPath()),
		Oracle:    oracle,
		Fetcher:   update.NewFetcher(update.NewDownloadClient(cfg.InsecureTLS)),
		Probe:     probe,
		Spawner:   process.NewSpawner(),
		Aux:       auxdata.New(api, cfg.AuxDataURL),
		UpdateURL: cfg.UpdateURL,
		Logger:    log,
	})

	return &Deps{
		Cfg:       cfg,
		Launcher:  l,
		Oracle:    oracle,
		Probe:     probe,
		Printer:   getPrinter(),
		Prompter:  &ttyPrompter{},
		Output:    os.Stdout,
		Log:       log,
		Find:      locator.Find,
		DiskFree:  collector.DiskFree,
		Resources: collector.Collect,
		IsTTY:     stdoutIsTTY,
		RunWindow: window.Run,
	}
}
