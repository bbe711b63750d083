//go:build !windows

package process

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
	"k8s.io/klog/v2"
)

// snapshot lists the process table once and reads each entry's name.
// Processes that exit before their name is read are skipped.
func snapshot() ([]Record, error) {
	pids, err := process.Pids()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}

	records := make([]Record, 0, len(pids))
	for _, pid := range pids {
		name, err := procHandle(pid).Name()
		if err != nil || name == "" {
			klog.V(4).Infof("skipping pid %d: %v", pid, err)
			continue
		}
		records = append(records, Record{PID: int(pid), Name: name})
	}
	return records, nil
}

// procHandle addresses pid without process.NewProcess, whose existence
// check goes through os.FindProcess and leaves a pidfd open until the
// next garbage collection. Reads against a vanished pid fail on their own.
func procHandle(pid int32) *process.Process {
	return &process.Process{Pid: pid}
}
