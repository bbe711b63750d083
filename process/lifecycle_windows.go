//go:build windows

package process

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// terminatePid requests termination of pid with ExitCode.
func terminatePid(pid int) error {
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("open process %d: %w", pid, err)
	}
	defer windows.CloseHandle(h)

	if err := windows.TerminateProcess(h, ExitCode); err != nil {
		return fmt.Errorf("terminate process %d: %w", pid, err)
	}
	return nil
}
