package main

import (
	"fmt"
	"io"
	"strings"

	ui "github.com/xynnet/client-launcher/internal/ui"
)

// Fixed column width for command alignment (longest command + buffer)
const helpCmdWidth = 28

func printRootHelp(w io.Writer, c *ui.ColorConfig) {
	fmt.Fprintln(w, c.Header(" Client Launcher "))
	fmt.Fprintln(w, c.Description("Keep the game client up to date and start it."))
	fmt.Fprintln(w, c.Separator(50))
	fmt.Fprintln(w)

	fmt.Fprintln(w, c.SubHeader("USAGE"))
	fmt.Fprintf(w, "  %s [command] [flags]\n", "client-launcher")
	fmt.Fprintln(w, c.Description("  Without a command the interactive window opens (status when not a terminal)."))
	fmt.Fprintln(w)

	fmt.Fprintln(w, c.SubHeader("Quick Start"))
	fmt.Fprintln(w, helpLine(c, "setup <dir>", "Select the client install directory"))
	fmt.Fprintln(w, helpLine(c, "update", "Download and install the latest client"))
	fmt.Fprintln(w, helpLine(c, "play", "Start the client"))
	fmt.Fprintln(w, helpLine(c, "window", "Interactive launcher window"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, c.SubHeader("Information"))
	fmt.Fprintln(w, helpLine(c, "status", "Show install and version status"))
	fmt.Fprintln(w, helpLine(c, "update --check-only", "Only check whether an update exists"))
	fmt.Fprintln(w, helpLine(c, "logs", "Show the launcher log"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, c.SubHeader("Utilities"))
	fmt.Fprintln(w, helpLine(c, "doctor", "Run diagnostic checks"))
	fmt.Fprintln(w, helpLine(c, "version", "Show launcher version"))
	fmt.Fprintln(w, helpLine(c, "completion <shell>", "Generate shell completion"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, c.SubHeader("Global Flags"))
	fmt.Fprintln(w, helpLine(c, "--workdir <dir>", "Launcher working directory"))
	fmt.Fprintln(w, helpLine(c, "-o, --output <fmt>", "text|json|yaml"))
	fmt.Fprintln(w, helpLine(c, "-y, --yes", "Assume yes for all prompts"))
	fmt.Fprintln(w, helpLine(c, "-d, --debug", "Log to stderr too"))
	fmt.Fprintln(w)
}

func helpLine(c *ui.ColorConfig, cmd, desc string) string {
	pad := helpCmdWidth - len(cmd)
	if pad < 1 {
		pad = 1
	}
	return "  " + c.Command(cmd) + strings.Repeat(" ", pad) + c.Description(desc)
}
