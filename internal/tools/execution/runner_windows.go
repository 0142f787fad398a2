//go:build windows

package execution

import "os/exec"

// setProcGroup is a no-op on Windows, which has no Unix process groups.
func setProcGroup(*exec.Cmd) {}

// killProcTree kills the command itself; grandchildren may survive.
func killProcTree(cmd *exec.Cmd) {
	if cmd.Process != nil {
		cmd.Process.Kill()
	}
}
