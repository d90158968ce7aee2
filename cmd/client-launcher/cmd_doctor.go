package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xynnet/client-launcher/internal/exitcodes"
	"github.com/xynnet/client-launcher/internal/metrics"
	"github.com/xynnet/client-launcher/internal/process"
	ui "github.com/xynnet/client-launcher/internal/ui"
	"github.com/xynnet/client-launcher/internal/update"
)

const (
	// minFreeBytes is the free space below which the disk check warns.
	minFreeBytes = 2 << 30
	// minMemBytes is the available memory below which the memory check warns.
	minMemBytes = 1 << 30
	// maxCPUPercent is the host CPU load above which the CPU check warns.
	maxCPUPercent = 90.0
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the launcher setup",
	Long: `Performs health checks on the launcher setup including:
- Local config document and install directory
- Client executable location
- Update server connectivity and version ordering
- Disk space, CPU load, memory and running client processes
- Working directory permissions`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleDoctor(cmd.Context(), newDeps())
	},
}

type checkResult struct {
	Name    string   `json:"name" yaml:"name"`
	Status  string   `json:"status" yaml:"status"` // "pass", "warn", "fail"
	Message string   `json:"message" yaml:"message"`
	Details []string `json:"details,omitempty" yaml:"details,omitempty"`
}

func handleDoctor(ctx context.Context, d *Deps) error {
	local := d.Launcher.Local()
	results := []checkResult{
		checkConfigDocument(d),
		checkInstallDir(local.GameDirectory),
		checkExecutable(d, local.GameDirectory, local.ExecutableName),
	}
	server, check := checkVersionServer(ctx, d, local.InstalledVersion)
	results = append(results, server)
	if check != nil {
		results = append(results, checkVersionOrdering(check))
	}
	snap := d.Resources(ctx, "", local.ExecutableName)
	results = append(results,
		checkDiskSpace(d, local.GameDirectory),
		checkCPU(snap),
		checkMemory(snap),
		checkClientProcess(snap),
		checkWorkDirWritable(d.Cfg.WorkDir),
		checkLastUpdate(local.GameDirectory),
	)

	passed, warned, failed := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case "pass":
			passed++
		case "warn":
			warned++
		case "fail":
			failed++
		}
	}

	p := d.Printer
	if !p.Structure(map[string]any{"checks": results, "passed": passed, "warned": warned, "failed": failed}) {
		c := p.Colors
		fmt.Fprintln(d.Output, c.Header(" LAUNCHER HEALTH CHECK "))
		fmt.Fprintln(d.Output)
		for _, r := range results {
			printCheck(d, r, c)
		}
		fmt.Fprintln(d.Output)
		fmt.Fprintln(d.Output, c.Separator(60))
		fmt.Fprintf(d.Output, "%s  %s  %s\n",
			c.Success(fmt.Sprintf("%d passed", passed)),
			c.Warning(fmt.Sprintf("%d warnings", warned)),
			c.Error(fmt.Sprintf("%d failed", failed)))
	}

	if failed > 0 {
		return silentErr{exitcodes.ValidationErr(fmt.Sprintf("%d doctor check(s) failed", failed))}
	}
	return nil
}

func checkConfigDocument(d *Deps) checkResult {
	path := d.Cfg.ConfigPath()
	if _, err := os.Stat(path); err != nil {
		return checkResult{
			Name:    "Local config",
			Status:  "warn",
			Message: "Not created yet (defaults in use)",
			Details: []string{path, "Run: client-launcher setup <install-dir>"},
		}
	}
	return checkResult{Name: "Local config", Status: "pass", Message: path}
}

func checkInstallDir(dir string) checkResult {
	if dir == "" {
		return checkResult{
			Name:    "Install directory",
			Status:  "fail",
			Message: "Not selected",
			Details: []string{"Run: client-launcher setup <install-dir>"},
		}
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return checkResult{Name: "Install directory", Status: "fail", Message: "Missing: " + dir}
	}
	return checkResult{Name: "Install directory", Status: "pass", Message: dir}
}

func checkExecutable(d *Deps, dir, name string) checkResult {
	if dir == "" {
		return checkResult{Name: "Client executable", Status: "warn", Message: "Skipped (no install directory)"}
	}
	path, err := d.Find(dir, name)
	if err != nil {
		return checkResult{
			Name:    "Client executable",
			Status:  "fail",
			Message: name + " not found",
			Details: []string{"Expected under " + process.BinDir(dir)},
		}
	}
	return checkResult{Name: "Client executable", Status: "pass", Message: path}
}

func checkVersionServer(ctx context.Context, d *Deps, current string) (checkResult, *update.CheckResult) {
	start := time.Now()
	res, err := d.Oracle.Check(ctx, current)
	if err != nil {
		return checkResult{
			Name:    "Update server",
			Status:  "fail",
			Message: "Unreachable",
			Details: []string{d.Cfg.VersionURL, err.Error()},
		}, nil
	}
	msg := fmt.Sprintf("Latest %s (%s)", res.LatestVersion, time.Since(start).Round(time.Millisecond))
	if res.UpdateAvailable {
		return checkResult{
			Name:    "Update server",
			Status:  "warn",
			Message: msg + ", update required",
			Details: []string{"Run: client-launcher update"},
		}, res
	}
	return checkResult{Name: "Update server", Status: "pass", Message: msg}, res
}

func checkVersionOrdering(res *update.CheckResult) checkResult {
	if update.OrderingDiffers(res.CurrentVersion, res.LatestVersion) {
		return checkResult{
			Name:    "Version ordering",
			Status:  "warn",
			Message: "Text and semver ordering disagree",
			Details: []string{
				fmt.Sprintf("installed %s, latest %s", res.CurrentVersion, res.LatestVersion),
				"Updates are offered by text comparison",
			},
		}
	}
	return checkResult{Name: "Version ordering", Status: "pass", Message: "Consistent"}
}

func checkDiskSpace(d *Deps, dir string) checkResult {
	if dir == "" {
		dir = d.Cfg.WorkDir
	}
	free, err := d.DiskFree(dir)
	if err != nil {
		return checkResult{Name: "Disk space", Status: "warn", Message: "Unable to check", Details: []string{err.Error()}}
	}
	if free < minFreeBytes {
		return checkResult{
			Name:    "Disk space",
			Status:  "warn",
			Message: ui.FormatBytes(free) + " free",
			Details: []string{"Updates are held in memory and staged on disk; free up space before updating"},
		}
	}
	return checkResult{Name: "Disk space", Status: "pass", Message: ui.FormatBytes(free) + " free"}
}

func checkCPU(snap metrics.Snapshot) checkResult {
	msg := fmt.Sprintf("%.1f%% in use", snap.System.CPUPercent)
	if snap.System.CPUPercent > maxCPUPercent {
		return checkResult{Name: "CPU load", Status: "warn", Message: msg, Details: []string{"The client may stutter; close busy programs"}}
	}
	return checkResult{Name: "CPU load", Status: "pass", Message: msg}
}

func checkMemory(snap metrics.Snapshot) checkResult {
	sys := snap.System
	if sys.MemTotal == 0 {
		return checkResult{Name: "Memory", Status: "warn", Message: "Unable to check"}
	}
	msg := fmt.Sprintf("%s available of %s", ui.FormatBytes(sys.MemFree), ui.FormatBytes(sys.MemTotal))
	if sys.MemFree < minMemBytes {
		return checkResult{Name: "Memory", Status: "warn", Message: msg, Details: []string{"The client may run slowly; close other programs"}}
	}
	return checkResult{Name: "Memory", Status: "pass", Message: msg}
}

func checkClientProcess(snap metrics.Snapshot) checkResult {
	cl := snap.Client
	if len(cl.PIDs) == 0 {
		return checkResult{Name: "Client process", Status: "pass", Message: "Not running"}
	}
	pids := make([]string, 0, len(cl.PIDs))
	for _, pid := range cl.PIDs {
		pids = append(pids, fmt.Sprint(pid))
	}
	return checkResult{
		Name:    "Client process",
		Status:  "pass",
		Message: fmt.Sprintf("Running (%s resident)", ui.FormatBytes(cl.RSS)),
		Details: []string{"PID " + strings.Join(pids, ", ")},
	}
}

func checkWorkDirWritable(dir string) checkResult {
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return checkResult{Name: "Working directory", Status: "fail", Message: "Not writable", Details: []string{err.Error()}}
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return checkResult{Name: "Working directory", Status: "pass", Message: dir}
}

func checkLastUpdate(dir string) checkResult {
	if dir == "" {
		return checkResult{Name: "Last update", Status: "pass", Message: "None"}
	}
	m, err := update.ReadMarker(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{Name: "Last update", Status: "pass", Message: "No update installed by this launcher"}
		}
		return checkResult{Name: "Last update", Status: "warn", Message: "Unreadable completion marker", Details: []string{err.Error()}}
	}
	return checkResult{
		Name:    "Last update",
		Status:  "pass",
		Message: fmt.Sprintf("%d files at %s", m.Entries, m.CompletedAt.Local().Format(time.DateTime)),
	}
}

func printCheck(d *Deps, r checkResult, c *ui.ColorConfig) {
	icon := ""
	msg := ""

	switch r.Status {
	case "pass":
		icon = c.StatusIcon("ok")
		msg = c.Success(r.Message)
	case "warn":
		icon = c.StatusIcon("warn")
		msg = c.Warning(r.Message)
	case "fail":
		icon = c.StatusIcon("fail")
		msg = c.Error(r.Message)
	}

	fmt.Fprintf(d.Output, "%s %s: %s\n", icon, c.Header(r.Name), msg)
	for _, detail := range r.Details {
		fmt.Fprintf(d.Output, "  %s %s\n", c.Description("→"), detail)
	}
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
