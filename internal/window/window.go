// Package window is the launcher's interactive terminal front end.
package window

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xynnet/client-launcher/internal/files"
	"github.com/xynnet/client-launcher/internal/launcher"
	"github.com/xynnet/client-launcher/internal/ui"
)

// Actions is the orchestrator surface the window drives.
type Actions interface {
	CheckUpdate(ctx context.Context) launcher.VersionStatus
	Update(ctx context.Context) <-chan launcher.Event
	Play(ctx context.Context, confirm func() bool) (int, error)
	Local() files.LocalConfig
	Locate() (string, error)
	SelectInstall(dir string) error
}

// stateWatcher is implemented by orchestrators that publish their state
// transitions.
type stateWatcher interface {
	Watch(fn func(launcher.State)) (stop func())
}

// Options configures the window.
type Options struct {
	Title   string
	NoEmoji bool
	// CloseOnLaunch quits after the client has been started.
	CloseOnLaunch bool
}

type (
	checkedMsg struct {
		st     launcher.VersionStatus
		locErr error
	}
	playedMsg struct {
		pid int
		err error
	}
	selectedMsg   struct{ err error }
	stateMsg      struct{ s launcher.State }
	eventMsg      struct{ ev launcher.Event }
	updateDoneMsg struct{}
	// confirmMsg asks the user a yes/no question on behalf of Play.
	confirmMsg struct{ reply chan bool }
)

// dialog is a modal box; confirm dialogs answer through reply.
type dialog struct {
	title   string
	message string
	confirm bool
	reply   chan bool
}

// picker asks for the install directory.
type picker struct {
	input      textinput.Model
	executable string
	problem    string
}

// Model is the bubbletea model of the launcher window.
type Model struct {
	ctx     context.Context
	actions Actions
	opts    Options
	send    func(tea.Msg)

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	progress progress.Model

	status   string
	local    string
	latest   string
	busy     string // non-empty while an operation runs
	updating bool
	percent  int
	entry    string
	missing  bool // executable not found on the last refresh
	dialog   *dialog
	picker   *picker
	events   <-chan launcher.Event
	quitting bool
	declined bool // user closed the install directory question
	width    int
	height   int
}

// New builds the model. send delivers messages from worker goroutines to
// the running program; Run wires it to tea.Program.Send.
func New(ctx context.Context, actions Actions, opts Options, send func(tea.Msg)) *Model {
	if opts.Title == "" {
		opts.Title = "Client Launcher"
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &Model{
		ctx:      ctx,
		actions:  actions,
		opts:     opts,
		send:     send,
		keys:     newKeyMap(),
		help:     help.New(),
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		status:   "Checking version...",
		busy:     "check",
	}
}

// Run shows the window until the user closes it. Declining to choose an
// install directory returns launcher.ErrNoInstall.
func Run(ctx context.Context, actions Actions, opts Options) error {
	ui.InitTerminal()
	defer ui.ResetTerminalAfterTUI()

	var p *tea.Program
	m := New(ctx, actions, opts, func(msg tea.Msg) { p.Send(msg) })
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if w, ok := actions.(stateWatcher); ok {
		stop := w.Watch(func(s launcher.State) { p.Send(stateMsg{s: s}) })
		defer stop()
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	if m.declined {
		return launcher.ErrNoInstall
	}
	return nil
}

// Init asks for the install directory when none usable is stored, and
// otherwise starts the first version check.
func (m *Model) Init() tea.Cmd {
	// Style is set here, after the alt screen is up, to avoid terminal queries.
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	if needsInstall(m.actions.Local().GameDirectory) {
		return tea.Batch(m.spinner.Tick, m.askInstall(""))
	}
	return tea.Batch(m.spinner.Tick, m.checkCmd())
}

func needsInstall(dir string) bool {
	if dir == "" {
		return true
	}
	info, err := os.Stat(dir)
	return err != nil || !info.IsDir()
}

// askInstall opens the install directory question. problem explains why
// the previous answer was rejected.
func (m *Model) askInstall(problem string) tea.Cmd {
	if m.picker == nil {
		in := textinput.New()
		in.Placeholder = "/path/to/client"
		in.CharLimit = 4096
		in.Width = 48
		m.picker = &picker{input: in}
	}
	m.picker.executable = m.actions.Local().ExecutableName
	m.picker.problem = problem
	m.busy = ""
	m.status = "Select the client install directory"
	return m.picker.input.Focus()
}

func installProblem(err error, executable string) string {
	switch {
	case errors.Is(err, launcher.ErrNoInstall):
		return "Enter a directory."
	case errors.Is(err, launcher.ErrNotFound):
		return fmt.Sprintf("bin/%s was not found there. Choose another directory.", executable)
	default:
		return err.Error()
	}
}

func (m *Model) selectCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		return selectedMsg{err: m.actions.SelectInstall(dir)}
	}
}

func (m *Model) checkCmd() tea.Cmd {
	return func() tea.Msg {
		st := m.actions.CheckUpdate(m.ctx)
		_, err := m.actions.Locate()
		return checkedMsg{st: st, locErr: err}
	}
}

func (m *Model) playCmd() tea.Cmd {
	return func() tea.Msg {
		pid, err := m.actions.Play(m.ctx, m.confirmRelaunch)
		return playedMsg{pid: pid, err: err}
	}
}

// confirmRelaunch runs on Play's goroutine and blocks until the user
// answers the dialog.
func (m *Model) confirmRelaunch() bool {
	reply := make(chan bool, 1)
	m.send(confirmMsg{reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-m.ctx.Done():
		return false
	}
}

func waitEvent(ch <-chan launcher.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return updateDoneMsg{}
		}
		return eventMsg{ev: ev}
	}
}

// Update handles messages (Bubble Tea lifecycle)
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.progress.Width = max(min(msg.Width-10, 60), 10)
		return m, nil

	case checkedMsg:
		m.busy = ""
		m.local = msg.st.Local
		switch msg.st.State {
		case launcher.UpdateRequired:
			m.latest = msg.st.Latest
			m.status = fmt.Sprintf("Update available: %s (installed %s)", msg.st.Latest, msg.st.Local)
		case launcher.UpToDate:
			m.latest = msg.st.Latest
			m.status = fmt.Sprintf("Current version: %s", msg.st.Local)
		default:
			m.status = fmt.Sprintf("Current version: %s (update server unreachable)", msg.st.Local)
		}
		m.missing = msg.locErr != nil
		switch {
		case errors.Is(msg.locErr, launcher.ErrNoInstall):
			m.status = "No install directory selected"
		case msg.locErr != nil:
			m.status = "Client not found"
		}
		return m, nil

	case selectedMsg:
		m.busy = ""
		if msg.err != nil {
			return m, m.askInstall(installProblem(msg.err, m.picker.executable))
		}
		m.picker = nil
		m.busy = "check"
		m.status = "Checking version..."
		return m, m.checkCmd()

	case stateMsg:
		if text, ok := playSteps[msg.s]; ok && m.busy == "play" {
			m.status = text
		}
		return m, nil

	case playedMsg:
		m.busy = ""
		m.missing = errors.Is(msg.err, launcher.ErrNotFound)
		return m, m.handlePlayed(msg)

	case confirmMsg:
		m.dialog = &dialog{
			title:   "Client Running",
			message: "The client is already running.\nDo you want to open another one?",
			confirm: true,
			reply:   msg.reply,
		}
		return m, nil

	case eventMsg:
		return m, tea.Batch(m.handleEvent(msg.ev), waitEvent(m.events))

	case updateDoneMsg:
		m.busy = ""
		m.updating = false
		m.events = nil
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	}
	if m.picker != nil {
		var cmd tea.Cmd
		m.picker.input, cmd = m.picker.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// playSteps are the status texts shown while Play moves through its steps.
var playSteps = map[launcher.State]string{
	launcher.CheckingVersion:         "Checking version...",
	launcher.LocatingExecutable:      "Locating client...",
	launcher.ProbingProcess:          "Checking for running clients...",
	launcher.RefreshingAuxiliaryData: "Refreshing data files...",
	launcher.SettingEnvironment:      "Preparing environment...",
	launcher.Spawning:                "Starting client...",
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.answer(false)
		m.declined = m.picker != nil
		m.quitting = true
		return m, tea.Quit
	}
	if m.picker != nil {
		return m.handlePickerKey(msg)
	}
	if m.dialog != nil {
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.answer(true)
		case key.Matches(msg, m.keys.No):
			m.answer(false)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if m.busy != "" {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Play):
		m.busy = "play"
		m.status = "Starting client..."
		return m, m.playCmd()
	case key.Matches(msg, m.keys.Update):
		m.busy = "update"
		m.updating = true
		m.percent, m.entry = 0, ""
		m.status = "Checking for updates..."
		m.events = m.actions.Update(m.ctx)
		return m, tea.Batch(m.progress.SetPercent(0), waitEvent(m.events))
	case key.Matches(msg, m.keys.Check):
		m.busy = "check"
		m.status = "Checking version..."
		return m, m.checkCmd()
	}
	return m, nil
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.declined = true
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		if m.busy != "" {
			return m, nil
		}
		m.busy = "select"
		return m, m.selectCmd(strings.TrimSpace(m.picker.input.Value()))
	}
	var cmd tea.Cmd
	m.picker.input, cmd = m.picker.input.Update(msg)
	return m, cmd
}

// answer closes the open dialog, replying when it was a confirmation.
func (m *Model) answer(ok bool) {
	if m.dialog == nil {
		return
	}
	if m.dialog.reply != nil {
		m.dialog.reply <- ok
	}
	m.dialog = nil
}

func (m *Model) info(title, message string) {
	m.dialog = &dialog{title: title, message: message}
}

func (m *Model) handlePlayed(msg playedMsg) tea.Cmd {
	switch {
	case msg.err == nil:
		m.status = fmt.Sprintf("Client started (pid %d)", msg.pid)
		if m.opts.CloseOnLaunch {
			m.quitting = true
			return tea.Quit
		}
	case errors.Is(msg.err, launcher.ErrVersionStale):
		m.status = "Update required before playing"
		m.info("Update Required", "You need to update!")
	case errors.Is(msg.err, launcher.ErrNotFound):
		m.status = "Client executable not found"
		m.info("Error", "Client executable not found.")
	case errors.Is(msg.err, launcher.ErrNoInstall):
		return m.askInstall("")
	case errors.Is(msg.err, launcher.ErrDeclined):
		m.status = "Launch cancelled"
	default:
		m.status = "Launch failed"
		m.info("Error", msg.err.Error())
	}
	return nil
}

func (m *Model) handleEvent(ev launcher.Event) tea.Cmd {
	switch ev.Kind {
	case launcher.EventChecking:
		m.status = "Checking for updates..."
	case launcher.EventUpToDate:
		m.updating = false
		m.status = fmt.Sprintf("Current version: %s", ev.Version)
		m.info("No Update Needed", "You are up to date!")
	case launcher.EventStarted:
		m.latest = ev.Version
		m.status = fmt.Sprintf("Downloading %s...", ev.Version)
	case launcher.EventProgress:
		m.percent, m.entry = ev.Percent, ev.Name
		m.status = fmt.Sprintf("Installing %s... %d%%", ev.Version, ev.Percent)
		return m.progress.SetPercent(float64(ev.Percent) / 100)
	case launcher.EventDone:
		m.updating = false
		m.local = ev.Version
		m.status = fmt.Sprintf("Updated to version: %s", ev.Version)
		m.info("Update Complete", "The client has been updated.")
	case launcher.EventFailed:
		m.updating = false
		m.status = "Update failed"
		m.info("Update Failed", ev.Err.Error())
	}
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2)
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 3).
			Align(lipgloss.Center)
	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 2)
)

// View renders the window (Bubble Tea lifecycle)
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.dialog != nil {
		return m.place(m.dialogView())
	}
	if m.picker != nil {
		return m.place(m.pickerView())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.opts.Title))
	b.WriteString("\n\n")
	status := m.status
	if m.busy != "" {
		status = m.spinner.View() + " " + status
	}
	if m.missing {
		b.WriteString(errorStyle.Render(status))
	} else {
		b.WriteString(statusStyle.Render(status))
	}
	b.WriteString("\n")
	if m.latest != "" && m.local != "" && m.latest != m.local {
		b.WriteString(dimStyle.Render(fmt.Sprintf("installed %s · latest %s", m.local, m.latest)))
		b.WriteString("\n")
	}
	if m.updating {
		b.WriteString("\n")
		b.WriteString(m.progress.View())
		b.WriteString("\n")
		if m.entry != "" {
			b.WriteString(dimStyle.Render(ui.Truncate(m.entry, m.progress.Width)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return m.place(frameStyle.Render(b.String()))
}

func (m *Model) dialogView() string {
	d := m.dialog
	var buttons string
	if d.confirm {
		buttons = lipgloss.JoinHorizontal(lipgloss.Center,
			buttonStyle.Render("Yes (y)"), "  ", buttonStyle.Render("No (n)"))
	} else {
		buttons = buttonStyle.Render("OK (enter)")
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(d.title),
		"",
		d.message,
		"",
		buttons,
	)
	return dialogStyle.Render(content)
}

func (m *Model) pickerView() string {
	p := m.picker
	lines := []string{
		titleStyle.Render("Select Install Directory"),
		"",
		fmt.Sprintf("Enter the folder that contains bin/%s:", p.executable),
		"",
		p.input.View(),
	}
	if p.problem != "" {
		lines = append(lines, "", errorStyle.Render(p.problem))
	}
	lines = append(lines, "", dimStyle.Render("enter confirm · esc quit"))
	return dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// place centers content once the terminal size is known.
func (m *Model) place(s string) string {
	if m.width <= 0 || m.height <= 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}
