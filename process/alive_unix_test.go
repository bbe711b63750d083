//go:build !windows

package process

import "golang.org/x/sys/unix"

// isProcessAlive checks if a process is still running.
// EPERM means the process exists but belongs to someone else.
func isProcessAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
