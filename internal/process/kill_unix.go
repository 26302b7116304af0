//go:build !windows

// Package process terminates browser process trees left by the PDF renderer.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking
// Chrome's renderer and GPU helpers down with the browser.
func KillProcessGroup(pid int) {
	// Best effort: the launcher's own Kill runs after this
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
