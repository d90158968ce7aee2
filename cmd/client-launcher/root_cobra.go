package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xynnet/client-launcher/internal/config"
	"github.com/xynnet/client-launcher/internal/exitcodes"
	"github.com/xynnet/client-launcher/internal/logging"
	ui "github.com/xynnet/client-launcher/internal/ui"
)

// Version information - set via -ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Settings and log for the current invocation, set in PersistentPreRunE.
var (
	runCfg = config.Defaults()
	runLog = logging.Nop()
)

// rootCmd wires the CLI surface using Cobra. Without a subcommand it opens
// the interactive window on a terminal and prints status otherwise.
var rootCmd = &cobra.Command{
	Use:           "client-launcher",
	Short:         "Client Launcher",
	Long:          "Keep the game client up to date and start it: update, play, status, and diagnostics.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize global UI config from flags after parsing but before command execution
		ui.InitGlobal(ui.Config{
			NoColor: flagNoColor,
			NoEmoji: flagNoEmoji,
			Quiet:   flagQuiet,
		})

		// Set NO_COLOR env so lipgloss and other libraries respect the flag
		if flagNoColor {
			os.Setenv("NO_COLOR", "1")
		}

		switch flagOutput {
		case "text", "json", "yaml":
		default:
			return exitcodes.InvalidArgsError(fmt.Sprintf("invalid --output %q (want text|json|yaml)", flagOutput))
		}

		if skipSetup(cmd) {
			return nil
		}
		cfg, err := loadCfg()
		if err != nil {
			return exitcodes.WrapError(exitcodes.InvalidArgs, "launcher settings", err)
		}
		runCfg = cfg

		log, err := logging.New(logging.Options{
			Path:    cfg.LogPath(),
			Debug:   flagDebug,
			NoColor: flagNoColor,
		})
		if err != nil {
			// The log is for diagnostics only; commands still run without it.
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			log = logging.Nop()
		}
		runLog = log
		runLog.Debug().Str("command", cmd.CommandPath()).Str("version", Version).Msg("start")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = runLog.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		d := newDeps()
		if flagOutput == "text" && d.IsTTY() && d.Prompter.IsInteractive() {
			return runWindow(cmd.Context(), d)
		}
		return handleStatus(cmd.Context(), d, false)
	},
}

var (
	flagWorkDir        string
	flagConfig         string
	flagOutput         string
	flagQuiet          bool
	flagDebug          bool
	flagNoColor        bool
	flagNoEmoji        bool
	flagYes            bool
	flagNonInteractive bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagWorkDir, "workdir", "", "Launcher working directory (holds launcher_config.json and the log)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Local config document (relative to --workdir unless absolute)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format: json|yaml|text")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Quiet mode: minimal output (suppresses extras)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Debug output: log to stderr as well as the log file")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable ANSI colors")
	rootCmd.PersistentFlags().BoolVar(&flagNoEmoji, "no-emoji", false, "Disable emoji output")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Assume yes for all prompts")
	rootCmd.PersistentFlags().BoolVar(&flagNonInteractive, "non-interactive", false, "Fail instead of prompting")

	// Only the root command gets the grouped help; subcommands use cobra's default.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			fmt.Fprintln(os.Stdout, cmd.UsageString())
			return
		}
		// Help runs before PersistentPreRun, so manually configure colors
		c := ui.NewColorConfig()
		c.Enabled = c.Enabled && !flagNoColor
		c.EmojiEnabled = c.EmojiEnabled && !flagNoEmoji
		printRootHelp(os.Stdout, c)
	})
}

// skipSetup reports commands that need neither settings nor a log.
func skipSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "completion", "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return false
}

// loadCfg reads launcher.yaml + env via internal/config.Load() and then
// applies overrides from persistent flags.
func loadCfg() (config.Config, error) {
	cfg, err := config.Load(flagWorkDir)
	if err != nil {
		return cfg, err
	}
	if flagConfig != "" {
		cfg.ConfigFile = flagConfig
	}
	return cfg, cfg.Validate()
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var se silentErr
		if !errors.As(err, &se) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitcodes.CodeForError(err))
	}
}
