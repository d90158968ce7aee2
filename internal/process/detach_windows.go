//go:build windows

package process

import (
	"os/exec"
	"syscall"
)

// detach starts the child in a new process group so console Ctrl+C in the
// launcher does not reach the client.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
