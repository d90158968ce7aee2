// Package launcher ties the version check, update install, and client
// launch together.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/xynnet/client-launcher/internal/files"
	"github.com/xynnet/client-launcher/internal/locator"
	"github.com/xynnet/client-launcher/internal/process"
	"github.com/xynnet/client-launcher/internal/update"
)

var (
	// ErrVersionStale blocks Play until an update has been installed.
	ErrVersionStale = errors.New("client version is out of date")
	// ErrNotFound means the executable is not inside the install directory.
	ErrNotFound = errors.New("client executable not found")
	// ErrDeclined means the user chose not to start a second client.
	ErrDeclined = errors.New("launch cancelled")
	// ErrNoInstall means no install directory has been selected yet.
	ErrNoInstall = errors.New("no install directory selected")
	// ErrSpawnFailed wraps the OS error when the client cannot be started.
	ErrSpawnFailed = errors.New("could not start client")
)

// SeedVersion is stored for a freshly selected install.
const SeedVersion = "1.0.0"

// CacheDirName is the install subdirectory the auxiliary data goes to.
const CacheDirName = "cache"

// VersionSource reports the latest published client version.
type VersionSource interface {
	FetchLatest(ctx context.Context) (string, error)
}

// Installer downloads an update archive and installs it into dest.
type Installer interface {
	DownloadAndExtract(ctx context.Context, url, dest string, onProgress update.ProgressFunc) error
}

// DataRefresher refreshes data files in the client's cache directory.
type DataRefresher interface {
	Refresh(ctx context.Context, cacheDir string) error
}

// Options wires the launcher's collaborators. Store, Oracle, Fetcher,
// Probe, Spawner and Aux are required.
type Options struct {
	Store     files.ConfigStore
	Oracle    VersionSource
	Fetcher   Installer
	Probe     process.Probe
	Spawner   process.Spawner
	Aux       DataRefresher
	UpdateURL string
	Logger    zerolog.Logger

	find    func(root, name string) (string, error)
	environ func() []string
}

// Launcher is the launch orchestrator. It is the only writer of the
// visible state.
type Launcher struct {
	opts Options
	log  zerolog.Logger

	mu       sync.Mutex
	state    State
	latest   string
	watchers map[int]func(State)
	nextID   int
}

// New returns a Launcher in the Idle state.
func New(opts Options) *Launcher {
	if opts.find == nil {
		opts.find = locator.Find
	}
	if opts.environ == nil {
		opts.environ = os.Environ
	}
	return &Launcher{
		opts:  opts,
		log:   opts.Logger.With().Str("component", "launcher").Logger(),
		state: Idle,
	}
}

// State returns the most recent state.
func (l *Launcher) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Latest returns the last version reported by the server, if any.
func (l *Launcher) Latest() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest
}

// Local returns the persisted settings.
func (l *Launcher) Local() files.LocalConfig { return l.opts.Store.Load() }

// Watch registers fn for every state transition until stop is called.
// fn runs on the goroutine doing the transition and must not block for long.
func (l *Launcher) Watch(fn func(State)) (stop func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watchers == nil {
		l.watchers = make(map[int]func(State))
	}
	id := l.nextID
	l.nextID++
	l.watchers[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.watchers, id)
		l.mu.Unlock()
	}
}

func (l *Launcher) setState(s State) {
	l.mu.Lock()
	l.state = s
	fns := make([]func(State), 0, len(l.watchers))
	for _, fn := range l.watchers {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	l.log.Debug().Str("state", s.String()).Msg("state")
	for _, fn := range fns {
		fn(s)
	}
}

// CheckUpdate compares the stored version with the server's. An
// unreachable server yields UpdateUnknown and never an error.
func (l *Launcher) CheckUpdate(ctx context.Context) VersionStatus {
	l.setState(CheckingVersion)
	local := l.opts.Store.Load().InstalledVersion
	st := VersionStatus{Local: local}

	latest, err := l.opts.Oracle.FetchLatest(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("version check failed")
		st.State, st.Err = UpdateUnknown, err
		l.setState(UpdateUnknown)
		return st
	}

	l.mu.Lock()
	l.latest = latest
	l.mu.Unlock()

	st.Latest = latest
	if update.IsStale(local, latest) {
		st.State = UpdateRequired
	} else {
		st.State = UpToDate
	}
	l.log.Info().Str("local", local).Str("latest", latest).Str("result", st.State.String()).Msg("version checked")
	l.setState(st.State)
	return st
}

// Locate returns the path of the client executable in the selected install.
func (l *Launcher) Locate() (string, error) {
	cfg := l.opts.Store.Load()
	if cfg.GameDirectory == "" {
		return "", ErrNoInstall
	}
	return l.locate(cfg)
}

func (l *Launcher) locate(cfg files.LocalConfig) (string, error) {
	path, err := l.opts.find(cfg.GameDirectory, cfg.ExecutableName)
	if err != nil {
		return "", fmt.Errorf("%w: %s in %s", ErrNotFound, cfg.ExecutableName, cfg.GameDirectory)
	}
	return path, nil
}

// SelectInstall records dir as the install directory, keeping the stored
// executable name. See SelectInstallAs.
func (l *Launcher) SelectInstall(dir string) error {
	return l.SelectInstallAs(dir, l.opts.Store.Load().ExecutableName)
}

// SelectInstallAs records dir as the install directory with executable as
// the client's file name. dir must contain bin/<executable>; the stored
// version is reset to SeedVersion.
func (l *Launcher) SelectInstallAs(dir, executable string) error {
	if dir == "" {
		return ErrNoInstall
	}
	if executable == "" {
		executable = files.DefaultExecutable
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	target := filepath.Join(process.BinDir(abs), executable)
	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	version := SeedVersion
	if err := l.opts.Store.Save(files.Fields{
		GameDirectory:    &abs,
		ExecutableName:   &executable,
		InstalledVersion: &version,
	}); err != nil {
		return fmt.Errorf("save %s: %w", l.opts.Store.Path(), err)
	}
	l.log.Info().Str("game_path", abs).Str("executable", executable).Msg("install selected")
	return nil
}

// Play runs the launch workflow and returns the client's PID. confirm is
// asked only when a client is already running; returning false aborts with
// ErrDeclined. A nil confirm launches anyway.
//
// The running check is advisory: another client can start between the
// check and the spawn.
func (l *Launcher) Play(ctx context.Context, confirm func() bool) (int, error) {
	cfg := l.opts.Store.Load()
	if cfg.GameDirectory == "" {
		l.setState(Failed)
		return 0, ErrNoInstall
	}

	switch st := l.CheckUpdate(ctx); st.State {
	case UpdateRequired:
		l.setState(BlockedNeedsUpdate)
		return 0, fmt.Errorf("%w: installed %s, latest %s", ErrVersionStale, st.Local, st.Latest)
	case UpdateUnknown:
		l.log.Warn().Msg("launching without a version check")
	}

	l.setState(LocatingExecutable)
	exePath, err := l.locate(cfg)
	if err != nil {
		l.setState(NotFound)
		return 0, err
	}

	l.setState(ProbingProcess)
	running, err := l.opts.Probe.IsRunning(ctx, cfg.ExecutableName)
	if err != nil {
		l.log.Warn().Err(err).Msg("process probe failed")
	}
	if running {
		l.setState(ConfirmRelaunch)
		if confirm != nil && !confirm() {
			l.log.Info().Msg("relaunch declined")
			l.setState(Idle)
			return 0, ErrDeclined
		}
	}

	l.setState(RefreshingAuxiliaryData)
	cacheDir := filepath.Join(cfg.GameDirectory, CacheDirName)
	if err := l.opts.Aux.Refresh(ctx, cacheDir); err != nil {
		l.log.Warn().Err(err).Str("dir", cacheDir).Msg("auxiliary data refresh failed")
	}

	l.setState(SettingEnvironment)
	env := process.ClientEnv(l.opts.environ(), cfg.GameDirectory)

	l.setState(Spawning)
	pid, err := l.opts.Spawner.Spawn(process.SpawnOpts{
		Path: exePath,
		Dir:  filepath.Dir(exePath),
		Env:  env,
	})
	if err != nil {
		l.log.Error().Err(err).Str("path", exePath).Msg("spawn failed")
		l.setState(Failed)
		return 0, fmt.Errorf("%w: %w", ErrSpawnFailed, err)
	}
	l.log.Info().Int("pid", pid).Str("path", exePath).Msg("client started")
	l.setState(Done)
	return pid, nil
}
