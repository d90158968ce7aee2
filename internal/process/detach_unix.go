//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// detach starts the child in its own session so closing the launcher's
// terminal does not signal the client.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
