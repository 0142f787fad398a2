//go:build !windows

package execution

import (
	"os/exec"
	"syscall"
)

// setProcGroup puts the command in its own process group so its children can
// be killed along with it.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcTree kills the command's whole process group.
func killProcTree(cmd *exec.Cmd) {
	if cmd.Process != nil {
		// Negative PID targets the process group.
		syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
