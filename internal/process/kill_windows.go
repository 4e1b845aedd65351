//go:build windows

// Package process terminates orphaned child process trees left behind by
// headless browser launches.
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup force-kills pid and its children via taskkill /F /T.
// Best effort: the launcher's own Kill is the primary cleanup path.
func KillProcessGroup(pid int) {
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
