package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/xynnet/client-launcher/internal/config"
	"github.com/xynnet/client-launcher/internal/files"
	"github.com/xynnet/client-launcher/internal/launcher"
	"github.com/xynnet/client-launcher/internal/metrics"
	ui "github.com/xynnet/client-launcher/internal/ui"
	"github.com/xynnet/client-launcher/internal/update"
	"github.com/xynnet/client-launcher/internal/window"
)

// errMock is a generic error for test assertions.
var errMock = errors.New("mock error")

// mockLauncher implements Orchestrator for testing.
type mockLauncher struct {
	local   files.LocalConfig
	status  launcher.VersionStatus
	events  []launcher.Event
	pid     int
	playErr error
	// running makes Play ask confirm before launching.
	running   bool
	asked     bool
	selectErr error
}

func (m *mockLauncher) CheckUpdate(ctx context.Context) launcher.VersionStatus { return m.status }

func (m *mockLauncher) Update(ctx context.Context) <-chan launcher.Event {
	ch := make(chan launcher.Event, len(m.events))
	for _, ev := range m.events {
		ch <- ev
	}
	close(ch)
	return ch
}

func (m *mockLauncher) Play(ctx context.Context, confirm func() bool) (int, error) {
	if m.playErr != nil {
		return 0, m.playErr
	}
	if m.running {
		m.asked = true
		if confirm != nil && !confirm() {
			return 0, launcher.ErrDeclined
		}
	}
	return m.pid, nil
}

func (m *mockLauncher) SelectInstallAs(dir, executable string) error {
	if m.selectErr != nil {
		return m.selectErr
	}
	m.local = files.LocalConfig{GameDirectory: dir, ExecutableName: executable, InstalledVersion: launcher.SeedVersion}
	return nil
}

func (m *mockLauncher) SelectInstall(dir string) error {
	return m.SelectInstallAs(dir, m.local.ExecutableName)
}

func (m *mockLauncher) Local() files.LocalConfig { return m.local }

func (m *mockLauncher) Locate() (string, error) {
	if m.local.GameDirectory == "" {
		return "", launcher.ErrNoInstall
	}
	return filepath.Join(m.local.GameDirectory, "bin", m.local.ExecutableName), nil
}

// mockChecker implements VersionChecker for testing.
type mockChecker struct {
	latest string
	err    error
	calls  int
}

func (m *mockChecker) Check(ctx context.Context, current string) (*update.CheckResult, error) {
	m.calls++
	res := &update.CheckResult{CurrentVersion: current}
	if m.err != nil {
		return res, m.err
	}
	res.Available = true
	res.LatestVersion = m.latest
	res.UpdateAvailable = update.IsStale(current, m.latest)
	return res, nil
}

// mockProbe implements process.Probe for testing.
type mockProbe struct {
	running bool
	err     error
}

func (m *mockProbe) IsRunning(ctx context.Context, name string) (bool, error) {
	return m.running, m.err
}

// mockPrompter implements Prompter for testing.
type mockPrompter struct {
	interactive bool
	answers     []string
	prompts     []string
	err         error
}

func (m *mockPrompter) ReadLine(prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.answers) == 0 {
		return "", nil
	}
	ans := m.answers[0]
	m.answers = m.answers[1:]
	return ans, nil
}

func (m *mockPrompter) IsInteractive() bool { return m.interactive }

type testEnv struct {
	d        *Deps
	out      *bytes.Buffer
	launcher *mockLauncher
	checker  *mockChecker
	probe    *mockProbe
	prompter *mockPrompter
}

// newTestDeps returns Deps backed by mocks, printing plain text (or
// format) into a buffer. Flag globals are restored after the test.
func newTestDeps(t *testing.T, format string) *testEnv {
	t.Helper()
	saveFlags(t)
	flagOutput = format

	cfg := config.Defaults()
	cfg.WorkDir = t.TempDir()

	out := &bytes.Buffer{}
	p := ui.NewPrinter(format).WithWriter(out)
	p.Colors.Enabled = false
	p.Colors.EmojiEnabled = false

	env := &testEnv{
		out: out,
		launcher: &mockLauncher{local: files.LocalConfig{
			ExecutableName:   files.DefaultExecutable,
			InstalledVersion: files.DefaultVersion,
		}},
		checker:  &mockChecker{latest: "1.0.0"},
		probe:    &mockProbe{},
		prompter: &mockPrompter{},
	}
	env.d = &Deps{
		Cfg:      cfg,
		Launcher: env.launcher,
		Oracle:   env.checker,
		Probe:    env.probe,
		Printer:  p,
		Prompter: env.prompter,
		Output:   out,
		Log:      zerolog.Nop(),
		Find: func(root, name string) (string, error) {
			return "", launcher.ErrNotFound
		},
		DiskFree: func(string) (uint64, error) { return 100 << 30, nil },
		Resources: func(ctx context.Context, diskPath, executable string) metrics.Snapshot {
			return metrics.Snapshot{System: metrics.System{MemTotal: 16 << 30, MemFree: 8 << 30}}
		},
		IsTTY: func() bool { return false },
		RunWindow: func(ctx context.Context, a window.Actions, opts window.Options) error {
			return nil
		},
	}
	return env
}

func saveFlags(t *testing.T) {
	t.Helper()
	workDir, cfgFile, output := flagWorkDir, flagConfig, flagOutput
	quiet, debug, noColor, noEmoji := flagQuiet, flagDebug, flagNoColor, flagNoEmoji
	yes, nonInteractive := flagYes, flagNonInteractive
	t.Cleanup(func() {
		flagWorkDir, flagConfig, flagOutput = workDir, cfgFile, output
		flagQuiet, flagDebug, flagNoColor, flagNoEmoji = quiet, debug, noColor, noEmoji
		flagYes, flagNonInteractive = yes, nonInteractive
	})
}
