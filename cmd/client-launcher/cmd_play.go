package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xynnet/client-launcher/internal/exitcodes"
	"github.com/xynnet/client-launcher/internal/launcher"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the client",
	Long: `Checks the installed version, refreshes the auxiliary data file and
starts the client as an independent process. Play is refused while an
update is pending. When a client is already running you are asked before a
second one is started (--yes starts it without asking).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handlePlay(cmd.Context(), newDeps())
	},
}

type playResult struct {
	Launched bool   `json:"launched" yaml:"launched"`
	PID      int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func handlePlay(ctx context.Context, d *Deps) error {
	p := d.Printer
	askedNonInteractive := false
	confirm := func() bool {
		if flagYes {
			return true
		}
		if !d.Prompter.IsInteractive() {
			askedNonInteractive = true
			return false
		}
		ans, err := d.Prompter.ReadLine("The client is already running. Start another one? [y/N]: ")
		if err != nil {
			return false
		}
		return confirmed(ans, false)
	}

	pid, err := d.Launcher.Play(ctx, confirm)
	switch {
	case errors.Is(err, launcher.ErrDeclined) && askedNonInteractive:
		return report(d, exitcodes.PreconditionError("client is already running (pass --yes to start another)"))
	case errors.Is(err, launcher.ErrDeclined):
		if !p.Structure(playResult{Reason: "declined"}) {
			p.Info("Launch cancelled")
		}
		return nil
	case err != nil:
		return report(d, err)
	}

	if !p.Structure(playResult{Launched: true, PID: pid}) {
		p.Success("Client started")
		if !flagQuiet {
			p.KeyValueLine("PID", strconv.Itoa(pid), "dim")
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(playCmd)
}
