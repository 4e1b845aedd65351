//go:build !windows

// Package process terminates orphaned child process trees left behind by
// headless browser launches.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group rooted at pid.
// Best effort: the launcher's own Kill is the primary cleanup path.
func KillProcessGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
