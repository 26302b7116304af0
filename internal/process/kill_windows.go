//go:build windows

// Package process terminates browser process trees left by the PDF renderer.
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills pid and its child processes with taskkill
// (/F force, /T whole tree).
func KillProcessGroup(pid int) {
	// Best effort: the launcher's own Kill runs after this
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is an int
}
