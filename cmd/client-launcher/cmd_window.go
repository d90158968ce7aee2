package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/xynnet/client-launcher/internal/launcher"
	"github.com/xynnet/client-launcher/internal/window"
)

var windowCloseOnLaunch bool

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Open the interactive launcher window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWindow(cmd.Context(), newDeps())
	},
}

func runWindow(ctx context.Context, d *Deps) error {
	d.Log.Debug().Msg("window opened")
	err := d.RunWindow(ctx, d.Launcher, window.Options{
		NoEmoji:       flagNoEmoji,
		CloseOnLaunch: windowCloseOnLaunch,
	})
	if errors.Is(err, launcher.ErrNoInstall) {
		d.Log.Info().Msg("install directory selection declined")
		return report(d, err)
	}
	if err != nil {
		d.Log.Error().Err(err).Msg("window failed")
	}
	return err
}

func init() {
	windowCmd.Flags().BoolVar(&windowCloseOnLaunch, "close-on-launch", false, "Quit once the client has started")
	rootCmd.AddCommand(windowCmd)
}
