// Package metrics samples host and client-process resource usage.
package metrics

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

type System struct {
	CPUPercent float64 `json:"cpu_percent" yaml:"cpu_percent"`
	MemUsed    uint64  `json:"mem_used" yaml:"mem_used"`
	MemTotal   uint64  `json:"mem_total" yaml:"mem_total"`
	MemFree    uint64  `json:"mem_available" yaml:"mem_available"`
	DiskPath   string  `json:"disk_path" yaml:"disk_path"`
	DiskUsed   uint64  `json:"disk_used" yaml:"disk_used"`
	DiskFree   uint64  `json:"disk_free" yaml:"disk_free"`
	DiskTotal  uint64  `json:"disk_total" yaml:"disk_total"`
}

// Client aggregates every process named like the client executable.
type Client struct {
	PIDs []int32 `json:"pids,omitempty" yaml:"pids,omitempty"`
	RSS  uint64  `json:"rss" yaml:"rss"`
}

type Snapshot struct {
	System System `json:"system" yaml:"system"`
	Client Client `json:"client" yaml:"client"`
}

// Collector takes point-in-time snapshots. CPU usage is measured over
// the sample window, so Collect blocks for at least that long.
type Collector struct {
	sample time.Duration
}

// DefaultSample is the CPU sample window used by doctor.
const DefaultSample = 200 * time.Millisecond

// New returns a Collector sampling CPU over sample. Zero skips the CPU
// sample.
func New(sample time.Duration) *Collector { return &Collector{sample: sample} }

// Collect samples system usage, disk usage of the filesystem holding
// diskPath, and the resident memory of processes named executable.
// Individual probes that fail leave their fields zero.
func (c *Collector) Collect(ctx context.Context, diskPath, executable string) Snapshot {
	var snap Snapshot

	if c.sample > 0 {
		if percent, err := cpu.PercentWithContext(ctx, c.sample, false); err == nil && len(percent) > 0 {
			snap.System.CPUPercent = percent[0]
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snap.System.MemUsed = vm.Used
		snap.System.MemTotal = vm.Total
		snap.System.MemFree = vm.Available
	}

	if diskPath != "" {
		snap.System.DiskPath = diskPath
		if u, err := disk.UsageWithContext(ctx, diskPath); err == nil {
			snap.System.DiskUsed = u.Used
			snap.System.DiskFree = u.Free
			snap.System.DiskTotal = u.Total
		}
	}

	if executable != "" {
		snap.Client = clientUsage(ctx, executable)
	}
	return snap
}

// DiskFree returns the free bytes on the filesystem holding path.
func (c *Collector) DiskFree(path string) (uint64, error) {
	u, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return u.Free, nil
}

func clientUsage(ctx context.Context, executable string) Client {
	var cl Client
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return cl
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name != executable {
			continue
		}
		cl.PIDs = append(cl.PIDs, p.Pid)
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			cl.RSS += mi.RSS
		}
	}
	return cl
}
