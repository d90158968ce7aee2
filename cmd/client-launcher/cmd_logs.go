package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/xynnet/client-launcher/internal/exitcodes"
	ui "github.com/xynnet/client-launcher/internal/ui"
)

var (
	logsFollow bool
	logsLines  int
	logsRaw    bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the launcher log",
	Long:  "Prints the last lines of the launcher log. With --follow, keeps printing new lines until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleLogs(cmd.Context(), newDeps(), ui.LogViewOptions{
			Lines:  logsLines,
			Follow: logsFollow,
			Raw:    logsRaw,
		})
	},
}

func handleLogs(ctx context.Context, d *Deps, opts ui.LogViewOptions) error {
	opts.Path = d.Cfg.LogPath()
	opts.NoColor = flagNoColor
	opts.Out = d.Output
	if opts.Lines <= 0 {
		opts.Lines = 50
	}
	err := ui.ViewLog(ctx, opts)
	if errors.Is(err, fs.ErrNotExist) {
		return exitcodes.NotFoundErrf("no log at %s yet", opts.Path)
	}
	return err
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Keep printing new log lines")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 50, "Number of trailing lines to show")
	logsCmd.Flags().BoolVar(&logsRaw, "raw", false, "Print JSON records as stored")
	rootCmd.AddCommand(logsCmd)
}
