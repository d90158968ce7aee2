package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xynnet/client-launcher/internal/update"
)

var statusRefresh bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show install and version status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleStatus(cmd.Context(), newDeps(), statusRefresh)
	},
}

type statusResult struct {
	ConfigPath       string     `json:"config_path" yaml:"config_path"`
	InstallDir       string     `json:"install_dir" yaml:"install_dir"`
	Executable       string     `json:"executable" yaml:"executable"`
	ExecutablePath   string     `json:"executable_path,omitempty" yaml:"executable_path,omitempty"`
	ClientRunning    bool       `json:"client_running" yaml:"client_running"`
	InstalledVersion string     `json:"installed_version" yaml:"installed_version"`
	LatestVersion    string     `json:"latest_version,omitempty" yaml:"latest_version,omitempty"`
	ServerReachable  bool       `json:"server_reachable" yaml:"server_reachable"`
	UpdateAvailable  bool       `json:"update_available" yaml:"update_available"`
	FromCache        bool       `json:"from_cache" yaml:"from_cache"`
	CheckedAt        time.Time  `json:"checked_at" yaml:"checked_at"`
	OrderingWarning  string     `json:"ordering_warning,omitempty" yaml:"ordering_warning,omitempty"`
	LastUpdate       *time.Time `json:"last_update,omitempty" yaml:"last_update,omitempty"`
	Error            string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// computeStatus gathers install and version state. A cached check younger
// than ten minutes is reused unless fresh is set.
func computeStatus(ctx context.Context, d *Deps, fresh bool) statusResult {
	local := d.Launcher.Local()
	res := statusResult{
		ConfigPath:       d.Cfg.ConfigPath(),
		InstallDir:       local.GameDirectory,
		Executable:       local.ExecutableName,
		InstalledVersion: local.InstalledVersion,
	}

	if local.GameDirectory != "" {
		if path, err := d.Find(local.GameDirectory, local.ExecutableName); err == nil {
			res.ExecutablePath = path
		}
		if m, err := update.ReadMarker(local.GameDirectory); err == nil {
			t := m.CompletedAt
			res.LastUpdate = &t
		}
	}
	if running, err := d.Probe.IsRunning(ctx, local.ExecutableName); err == nil {
		res.ClientRunning = running
	}

	if !fresh {
		if c, err := update.LoadCache(d.Cfg.WorkDir); err == nil && update.IsCacheValid(c) && c.LocalVersion == local.InstalledVersion {
			res.FromCache = true
			res.ServerReachable = true
			res.LatestVersion = c.LatestVersion
			res.UpdateAvailable = c.UpdateAvailable
			res.CheckedAt = c.CheckedAt
		}
	}
	if !res.FromCache {
		res.CheckedAt = time.Now().UTC()
		check, err := d.Oracle.Check(ctx, local.InstalledVersion)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.ServerReachable = true
			res.LatestVersion = check.LatestVersion
			res.UpdateAvailable = check.UpdateAvailable
			if err := update.SaveResult(d.Cfg.WorkDir, check); err != nil {
				d.Log.Warn().Err(err).Msg("could not cache update check")
			}
		}
	}

	if res.ServerReachable && update.OrderingDiffers(res.InstalledVersion, res.LatestVersion) {
		res.OrderingWarning = fmt.Sprintf("%s and %s compare differently as text and as semver", res.InstalledVersion, res.LatestVersion)
	}
	return res
}

func handleStatus(ctx context.Context, d *Deps, fresh bool) error {
	res := computeStatus(ctx, d, fresh)
	p := d.Printer
	if p.Structure(res) {
		return nil
	}
	c := p.Colors

	p.Header("CLIENT STATUS")
	p.Section("Install")
	if res.InstallDir == "" {
		p.KeyValueLine("Directory", "not selected (run: client-launcher setup <dir>)", "yellow")
	} else {
		p.KeyValueLine("Directory", res.InstallDir, "")
		if res.ExecutablePath != "" {
			p.KeyValueLine("Executable", res.ExecutablePath, "")
		} else {
			p.KeyValueLine("Executable", res.Executable+" (not found)", "red")
		}
	}
	running := "no"
	if res.ClientRunning {
		running = "yes"
	}
	p.KeyValueLine("Running", running, "")

	p.Section("Version")
	p.KeyValueLine("Installed", res.InstalledVersion, "")
	switch {
	case !res.ServerReachable:
		p.KeyValueLine("Latest", "unknown (server unreachable)", "yellow")
	case res.UpdateAvailable:
		p.KeyValueLine("Latest", res.LatestVersion, "yellow")
		p.Textf("%s %s\n", c.StatusIcon("update-required"), "Update required before playing (run: client-launcher update)")
	default:
		p.KeyValueLine("Latest", res.LatestVersion, "green")
		p.Textf("%s %s\n", c.StatusIcon("up-to-date"), "Up to date")
	}
	if res.LastUpdate != nil {
		p.KeyValueLine("Last update", res.LastUpdate.Local().Format(time.DateTime), "dim")
	}
	if res.FromCache && !flagQuiet {
		p.KeyValueLine("Checked", res.CheckedAt.Local().Format(time.DateTime)+" (cached, --refresh to recheck)", "dim")
	}
	if res.OrderingWarning != "" && !flagQuiet {
		p.Warn(res.OrderingWarning)
	}
	if res.Error != "" && flagDebug {
		fmt.Fprintln(os.Stderr, res.Error)
	}
	return nil
}

func init() {
	statusCmd.Flags().BoolVar(&statusRefresh, "refresh", false, "Ignore the cached version check")
	rootCmd.AddCommand(statusCmd)
}
