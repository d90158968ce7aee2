package process

import (
	"context"

	ps "github.com/shirou/gopsutil/v3/process"
)

// Probe answers whether a client process is already running. The answer is
// a snapshot: a process may start or exit right after the check, so callers
// use it for advisory warnings only, never as a lock.
type Probe interface {
	IsRunning(ctx context.Context, executableName string) (bool, error)
}

type psProbe struct {
	list func(ctx context.Context) ([]*ps.Process, error)
}

// NewProbe returns a Probe backed by the OS process table.
func NewProbe() Probe {
	return &psProbe{list: ps.ProcessesWithContext}
}

// IsRunning reports whether any process's name equals executableName
// exactly. Processes that exit while being inspected are skipped.
func (p *psProbe) IsRunning(ctx context.Context, executableName string) (bool, error) {
	if executableName == "" {
		return false, nil
	}
	procs, err := p.list(ctx)
	if err != nil {
		return false, err
	}
	for _, proc := range procs {
		name, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if name == executableName {
			return true, nil
		}
	}
	return false, nil
}
