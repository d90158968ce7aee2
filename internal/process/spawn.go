package process

import (
	"errors"
	"fmt"
	"os/exec"
)

// SpawnOpts describes the client launch.
type SpawnOpts struct {
	Path string   // executable to run, no arguments are passed
	Dir  string   // working directory (defaults to the executable's directory)
	Env  []string // full child environment; nil inherits the launcher's
}

// Spawner starts the client as an independent process.
type Spawner interface {
	Spawn(opts SpawnOpts) (int, error) // returns PID
}

type execSpawner struct{}

// NewSpawner returns the production Spawner.
func NewSpawner() Spawner { return &execSpawner{} }

// Spawn starts opts.Path detached from the launcher's session and returns
// its PID without waiting for it. The child is reaped in the background so
// it never lingers as a zombie while the launcher stays open.
func (s *execSpawner) Spawn(opts SpawnOpts) (int, error) {
	if opts.Path == "" {
		return 0, errors.New("executable path required")
	}
	cmd := exec.Command(opts.Path)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", opts.Path, err)
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()
	return pid, nil
}
