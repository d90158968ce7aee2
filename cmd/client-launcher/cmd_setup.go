package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xynnet/client-launcher/internal/exitcodes"
	"github.com/xynnet/client-launcher/internal/process"
)

var setupExecutable string

var setupCmd = &cobra.Command{
	Use:   "setup [install-dir]",
	Short: "Select the client install directory",
	Long: `Records the directory the client is installed in. The directory must
contain bin/<executable>. Without an argument you are asked for it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		return handleSetup(newDeps(), dir, setupExecutable)
	},
}

type setupResult struct {
	InstallDir string `json:"install_dir" yaml:"install_dir"`
	Executable string `json:"executable" yaml:"executable"`
	Version    string `json:"version" yaml:"version"`
}

func handleSetup(d *Deps, dir, executable string) error {
	if executable == "" {
		executable = d.Cfg.Executable
	}
	if dir == "" {
		if !d.Prompter.IsInteractive() {
			return exitcodes.InvalidArgsError("install directory required: client-launcher setup <dir>")
		}
		ans, err := d.Prompter.ReadLine("Client install directory: ")
		if err != nil {
			return exitcodes.WrapError(exitcodes.InvalidArgs, "read install directory", err)
		}
		if ans == "" {
			return exitcodes.InvalidArgsError("install directory required")
		}
		dir = ans
	}

	if err := d.Launcher.SelectInstallAs(dir, executable); err != nil {
		return report(d, err)
	}

	local := d.Launcher.Local()
	d.Log.Info().Str("game_path", local.GameDirectory).Msg("setup complete")
	p := d.Printer
	if p.Structure(setupResult{InstallDir: local.GameDirectory, Executable: local.ExecutableName, Version: local.InstalledVersion}) {
		return nil
	}
	p.Success(fmt.Sprintf("Install directory set to %s", local.GameDirectory))
	if !flagQuiet {
		p.KeyValueLine("Binaries", process.BinDir(local.GameDirectory), "dim")
		p.KeyValueLine("Executable", local.ExecutableName, "dim")
		p.Info("Run 'client-launcher update' to make sure the client is current")
	}
	return nil
}

func init() {
	setupCmd.Flags().StringVar(&setupExecutable, "executable", "", "Client executable name (default from settings)")
	rootCmd.AddCommand(setupCmd)
}
