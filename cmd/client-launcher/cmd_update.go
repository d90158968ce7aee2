package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xynnet/client-launcher/internal/launcher"
	ui "github.com/xynnet/client-launcher/internal/ui"
	"github.com/xynnet/client-launcher/internal/update"
)

var updateCheckOnly bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download and install the latest client",
	Long: `Compares the installed version with the update server and, when the
server has a newer one, downloads the update archive and extracts it over
the install directory. The installed version is only recorded once every
file is in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := newDeps()
		if updateCheckOnly {
			return handleUpdateCheck(cmd.Context(), d)
		}
		return handleUpdate(cmd.Context(), d)
	},
}

// updateResult is the structured outcome of an update run.
type updateResult struct {
	Status  string `json:"status" yaml:"status"` // up-to-date, updated, failed
	From    string `json:"from" yaml:"from"`
	To      string `json:"to,omitempty" yaml:"to,omitempty"`
	Entries int    `json:"entries,omitempty" yaml:"entries,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func handleUpdateCheck(ctx context.Context, d *Deps) error {
	p := d.Printer
	local := d.Launcher.Local().InstalledVersion
	res, err := d.Oracle.Check(ctx, local)
	if err != nil {
		return report(d, err)
	}
	if err := update.SaveResult(d.Cfg.WorkDir, res); err != nil {
		d.Log.Warn().Err(err).Msg("could not cache update check")
	}
	if p.Structure(res) {
		return nil
	}

	p.KeyValueLine("Installed", res.CurrentVersion, "")
	p.KeyValueLine("Latest", res.LatestVersion, "")
	if res.UpdateAvailable {
		p.Warn(fmt.Sprintf("Update available: %s (run: client-launcher update)", res.LatestVersion))
	} else {
		p.Success("Client is up to date")
	}
	if update.OrderingDiffers(res.CurrentVersion, res.LatestVersion) && !flagQuiet {
		p.Warn("Versions compare differently as text and as semver; the text comparison decides")
	}
	return nil
}

func handleUpdate(ctx context.Context, d *Deps) error {
	p := d.Printer
	text := !p.Structured()
	res := updateResult{From: d.Launcher.Local().InstalledVersion}

	var bar *ui.ProgressBar
	var failure error
	for ev := range d.Launcher.Update(ctx) {
		switch ev.Kind {
		case launcher.EventChecking:
			if text && !flagQuiet {
				p.Info("Checking for updates...")
			}
		case launcher.EventUpToDate:
			res.Status = "up-to-date"
			res.To = ev.Version
		case launcher.EventStarted:
			res.To = ev.Version
			if text {
				p.Info(fmt.Sprintf("Updating %s -> %s", res.From, ev.Version))
				if !flagQuiet {
					bar = ui.NewProgressBar(d.Output, "Installing")
				}
			}
		case launcher.EventProgress:
			res.Entries++
			if bar != nil {
				bar.Update(ev.Percent, ev.Name)
			}
		case launcher.EventDone:
			res.Status = "updated"
			res.To = ev.Version
		case launcher.EventFailed:
			res.Status = "failed"
			failure = ev.Err
		}
	}
	if bar != nil {
		bar.Finish()
	}

	// The worker stops sending once ctx is done; treat a silent close as a failure.
	if res.Status == "" {
		failure = ctx.Err()
		if failure == nil {
			failure = fmt.Errorf("update stopped")
		}
		res.Status = "failed"
	}
	if failure != nil {
		res.Error = failure.Error()
		if p.Structure(res) {
			return silentErr{withExitCode(failure)}
		}
		return report(d, failure)
	}

	if err := update.SaveResult(d.Cfg.WorkDir, &update.CheckResult{
		CurrentVersion: res.To,
		LatestVersion:  res.To,
		Available:      true,
	}); err != nil {
		d.Log.Warn().Err(err).Msg("could not cache update check")
	}

	if p.Structure(res) {
		return nil
	}
	if res.Status == "up-to-date" {
		p.Success(fmt.Sprintf("You are up to date (%s)", res.To))
	} else {
		p.Success(fmt.Sprintf("Updated to version %s", res.To))
	}
	return nil
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check-only", false, "Only check for an update, do not install")
	rootCmd.AddCommand(updateCmd)
}
