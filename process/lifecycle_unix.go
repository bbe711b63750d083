//go:build !windows

package process

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// terminatePid sends SIGKILL to pid.
func terminatePid(pid int) error {
	if err := unix.Kill(pid, unix.SIGKILL); err != nil {
		return fmt.Errorf("kill %d: %w", pid, err)
	}
	return nil
}
