package window

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xynnet/client-launcher/internal/files"
	"github.com/xynnet/client-launcher/internal/launcher"
	"github.com/xynnet/client-launcher/internal/update"
)

type fakeActions struct {
	status  launcher.VersionStatus
	events  []launcher.Event
	playErr error
	played  int
	confirm func() bool

	local      files.LocalConfig
	locateErr  error
	selectErrs []error // returned by successive SelectInstall calls
	selected   []string
}

func (f *fakeActions) Local() files.LocalConfig {
	l := f.local
	if l.ExecutableName == "" {
		l.ExecutableName = files.DefaultExecutable
	}
	return l
}

func (f *fakeActions) Locate() (string, error) {
	if f.locateErr != nil {
		return "", f.locateErr
	}
	return filepath.Join(f.local.GameDirectory, "bin", files.DefaultExecutable), nil
}

func (f *fakeActions) SelectInstall(dir string) error {
	f.selected = append(f.selected, dir)
	if len(f.selectErrs) > 0 {
		err := f.selectErrs[0]
		f.selectErrs = f.selectErrs[1:]
		if err != nil {
			return err
		}
	}
	f.local.GameDirectory = dir
	return nil
}

func (f *fakeActions) CheckUpdate(context.Context) launcher.VersionStatus { return f.status }

func (f *fakeActions) Update(context.Context) <-chan launcher.Event {
	ch := make(chan launcher.Event, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch
}

func (f *fakeActions) Play(_ context.Context, confirm func() bool) (int, error) {
	f.played++
	f.confirm = confirm
	if f.playErr != nil {
		return 0, f.playErr
	}
	return 77, nil
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newModel(a Actions) *Model {
	m := New(context.Background(), a, Options{}, func(tea.Msg) {})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

// run feeds msg to the model and then every message its commands produce,
// skipping animation ticks.
func run(m *Model, msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		_, cmd := m.Update(next)
		queue = append(queue, collect(cmd)...)
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(50 * time.Millisecond):
		return nil // tick-style command; not needed for state
	}
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case nil, progress.FrameMsg, spinner.TickMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

func TestCheckedStatus(t *testing.T) {
	tests := []struct {
		st   launcher.VersionStatus
		want string
	}{
		{launcher.VersionStatus{State: launcher.UpToDate, Local: "1.1.0", Latest: "1.1.0"}, "Current version: 1.1.0"},
		{launcher.VersionStatus{State: launcher.UpdateRequired, Local: "1.0.0", Latest: "1.1.0"}, "Update available: 1.1.0"},
		{launcher.VersionStatus{State: launcher.UpdateUnknown, Local: "1.0.0"}, "update server unreachable"},
	}
	for _, tt := range tests {
		m := newModel(&fakeActions{status: tt.st})
		m.Update(checkedMsg{st: tt.st})
		if !strings.Contains(m.status, tt.want) {
			t.Errorf("status = %q, want %q", m.status, tt.want)
		}
		if m.busy != "" {
			t.Errorf("still busy after check: %q", m.busy)
		}
	}
}

func TestPlay_Success(t *testing.T) {
	a := &fakeActions{}
	m := newModel(a)
	m.busy = ""
	run(m, keyPress('p'))
	if a.played != 1 {
		t.Fatalf("played = %d", a.played)
	}
	if !strings.Contains(m.status, "pid 77") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestPlay_ErrorsOpenDialog(t *testing.T) {
	tests := []struct {
		err   error
		title string
	}{
		{launcher.ErrVersionStale, "Update Required"},
		{launcher.ErrNotFound, "Error"},
		{errors.New("exec format error"), "Error"},
	}
	for _, tt := range tests {
		m := newModel(&fakeActions{playErr: tt.err})
		m.busy = ""
		run(m, keyPress('p'))
		if m.dialog == nil || m.dialog.title != tt.title {
			t.Fatalf("%v: dialog = %+v, want %q", tt.err, m.dialog, tt.title)
		}
		run(m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.dialog != nil {
			t.Fatal("enter should close the info dialog")
		}
	}
}

func TestBusyIgnoresActions(t *testing.T) {
	a := &fakeActions{}
	m := newModel(a)
	m.busy = "check"
	m.Update(keyPress('p'))
	if a.played != 0 {
		t.Fatal("play started while busy")
	}
}

func TestConfirmDialog(t *testing.T) {
	for _, tc := range []struct {
		key  tea.KeyMsg
		want bool
	}{
		{keyPress('y'), true},
		{keyPress('n'), false},
		{tea.KeyMsg{Type: tea.KeyEsc}, false},
	} {
		m := newModel(&fakeActions{})
		reply := make(chan bool, 1)
		m.Update(confirmMsg{reply: reply})
		if m.dialog == nil || !m.dialog.confirm {
			t.Fatal("expected confirm dialog")
		}
		if !strings.Contains(m.View(), "already running") {
			t.Fatalf("view missing prompt:\n%s", m.View())
		}
		m.Update(tc.key)
		if got := <-reply; got != tc.want {
			t.Fatalf("reply = %v, want %v", got, tc.want)
		}
		if m.dialog != nil {
			t.Fatal("dialog still open")
		}
	}
}

func TestConfirmRelaunchBridge(t *testing.T) {
	msgs := make(chan tea.Msg, 1)
	m := New(context.Background(), &fakeActions{}, Options{}, func(msg tea.Msg) { msgs <- msg })
	got := make(chan bool, 1)
	go func() { got <- m.confirmRelaunch() }()

	select {
	case msg := <-msgs:
		m.Update(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("confirm request never sent")
	}
	if m.dialog == nil || !m.dialog.confirm {
		t.Fatal("expected confirm dialog")
	}
	m.Update(keyPress('y'))
	if !<-got {
		t.Fatal("confirm should return the user's answer")
	}
}

func TestConfirmRelaunchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := New(ctx, &fakeActions{}, Options{}, func(tea.Msg) {})
	cancel()
	if m.confirmRelaunch() {
		t.Fatal("cancelled confirm should decline")
	}
}

func TestUpdateFlow(t *testing.T) {
	a := &fakeActions{events: []launcher.Event{
		{Kind: launcher.EventChecking},
		{Kind: launcher.EventStarted, Version: "1.1.0"},
		{Kind: launcher.EventProgress, Percent: 33, Name: "bin/client.exe", Version: "1.1.0"},
		{Kind: launcher.EventProgress, Percent: 66, Name: "bin/platforms/qwindows.dll", Version: "1.1.0"},
		{Kind: launcher.EventProgress, Percent: 100, Name: "data/things.dat", Version: "1.1.0"},
		{Kind: launcher.EventDone, Version: "1.1.0"},
	}}
	m := newModel(a)
	m.busy = ""
	run(m, keyPress('u'))

	if m.percent != 100 || m.entry != "data/things.dat" {
		t.Fatalf("progress = %d %q", m.percent, m.entry)
	}
	if m.status != "Updated to version: 1.1.0" {
		t.Fatalf("status = %q", m.status)
	}
	if m.dialog == nil || m.dialog.title != "Update Complete" {
		t.Fatalf("dialog = %+v", m.dialog)
	}
	if m.busy != "" || m.updating {
		t.Fatal("update should be finished")
	}
}

func TestUpdateFailed(t *testing.T) {
	a := &fakeActions{events: []launcher.Event{
		{Kind: launcher.EventChecking},
		{Kind: launcher.EventFailed, Err: update.ErrNetwork},
	}}
	m := newModel(a)
	m.busy = ""
	run(m, keyPress('u'))
	if m.dialog == nil || m.dialog.title != "Update Failed" {
		t.Fatalf("dialog = %+v", m.dialog)
	}
}

func TestQuit(t *testing.T) {
	m := newModel(&fakeActions{})
	_, cmd := m.Update(keyPress('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Fatal("view should be empty after quit")
	}
}

func TestViewShowsHelp(t *testing.T) {
	m := newModel(&fakeActions{})
	m.busy = ""
	m.status = "Current version: 1.0.0"
	v := m.View()
	for _, want := range []string{"Client Launcher", "Current version: 1.0.0", "play", "update"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
}

func TestInit_AsksForInstall(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		ask  bool
	}{
		{"nothing stored", "", true},
		{"stored directory gone", filepath.Join(t.TempDir(), "gone"), true},
		{"valid directory", t.TempDir(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(&fakeActions{local: files.LocalConfig{GameDirectory: tt.dir}})
			m.Init()
			if got := m.picker != nil; got != tt.ask {
				t.Fatalf("picker open = %v, want %v", got, tt.ask)
			}
			if tt.ask {
				if m.busy != "" {
					t.Errorf("busy = %q while asking", m.busy)
				}
				v := m.View()
				if !strings.Contains(v, "Select Install Directory") || !strings.Contains(v, "bin/client.exe") {
					t.Errorf("view missing question:\n%s", v)
				}
			} else if m.busy != "check" {
				t.Errorf("busy = %q, want check", m.busy)
			}
		})
	}
}

func TestInstallPicker_AsksAgainUntilValid(t *testing.T) {
	a := &fakeActions{
		status:     launcher.VersionStatus{State: launcher.UpToDate, Local: "1.0.0", Latest: "1.0.0"},
		selectErrs: []error{launcher.ErrNoInstall, fmt.Errorf("%w: /wrong/bin/client.exe", launcher.ErrNotFound)},
	}
	m := newModel(a)
	m.Init()

	run(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.picker == nil || m.picker.problem != "Enter a directory." {
		t.Fatalf("picker = %+v", m.picker)
	}

	run(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/wrong")})
	if got := m.picker.input.Value(); got != "/wrong" {
		t.Fatalf("input = %q", got)
	}
	run(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.picker == nil || !strings.Contains(m.picker.problem, "bin/client.exe was not found") {
		t.Fatalf("picker = %+v", m.picker)
	}
	if !strings.Contains(m.View(), "not found") {
		t.Errorf("view missing problem:\n%s", m.View())
	}

	m.picker.input.SetValue("  /games/client ")
	run(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.picker != nil {
		t.Fatal("picker still open after a valid directory")
	}
	want := []string{"", "/wrong", "/games/client"}
	if strings.Join(a.selected, "|") != strings.Join(want, "|") {
		t.Errorf("selected = %q, want %q", a.selected, want)
	}
	if m.status != "Current version: 1.0.0" || m.busy != "" {
		t.Errorf("status = %q busy = %q", m.status, m.busy)
	}
}

func TestInstallPicker_TypingQDoesNotQuit(t *testing.T) {
	m := newModel(&fakeActions{})
	m.Init()
	m.Update(keyPress('q'))
	if m.quitting {
		t.Fatal("q inside the question must be typed, not quit")
	}
	if got := m.picker.input.Value(); got != "q" {
		t.Errorf("input = %q", got)
	}
}

func TestInstallPicker_Cancel(t *testing.T) {
	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		a := &fakeActions{}
		m := newModel(a)
		m.Init()
		_, cmd := m.Update(k)
		if !m.declined || !m.quitting {
			t.Fatalf("%v: declined = %v quitting = %v", k, m.declined, m.quitting)
		}
		if cmd == nil {
			t.Fatalf("%v: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%v: expected tea.QuitMsg", k)
		}
		if len(a.selected) != 0 {
			t.Errorf("%v: selected = %v", k, a.selected)
		}
	}
}

func TestQuitWithoutPickerIsNotDecline(t *testing.T) {
	m := newModel(&fakeActions{})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if m.declined {
		t.Fatal("closing the main window is not a declined install")
	}
}

func TestPlay_NoInstallOpensPicker(t *testing.T) {
	m := newModel(&fakeActions{playErr: launcher.ErrNoInstall})
	m.busy = ""
	run(m, keyPress('p'))
	if m.picker == nil {
		t.Fatal("expected install directory question")
	}
}

func TestCheckedClientNotFound(t *testing.T) {
	st := launcher.VersionStatus{State: launcher.UpToDate, Local: "1.0.0", Latest: "1.0.0"}
	a := &fakeActions{status: st, locateErr: launcher.ErrNotFound, local: files.LocalConfig{GameDirectory: t.TempDir()}}
	m := newModel(a)
	m.busy = ""
	run(m, keyPress('r'))
	if m.status != "Client not found" || !m.missing {
		t.Fatalf("status = %q missing = %v", m.status, m.missing)
	}
	if !strings.Contains(m.View(), "Client not found") {
		t.Errorf("view:\n%s", m.View())
	}

	a.locateErr = nil
	m.busy = ""
	run(m, keyPress('r'))
	if m.missing || m.status != "Current version: 1.0.0" {
		t.Fatalf("status = %q missing = %v", m.status, m.missing)
	}
}

func TestStateMsgFollowsPlay(t *testing.T) {
	m := newModel(&fakeActions{})
	m.busy = "play"
	m.Update(stateMsg{s: launcher.RefreshingAuxiliaryData})
	if m.status != "Refreshing data files..." {
		t.Fatalf("status = %q", m.status)
	}
	m.Update(stateMsg{s: launcher.Done})
	if m.status != "Refreshing data files..." {
		t.Fatalf("terminal states must not overwrite status, got %q", m.status)
	}

	m.busy = ""
	m.status = "Current version: 1.0.0"
	m.Update(stateMsg{s: launcher.CheckingVersion})
	if m.status != "Current version: 1.0.0" {
		t.Fatalf("state outside Play changed status to %q", m.status)
	}
}
