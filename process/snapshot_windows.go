//go:build windows

package process

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
	"k8s.io/klog/v2"
)

// snapshot walks a toolhelp snapshot of the process table.
func snapshot() ([]Record, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	// An empty table is not an error.
	if err := windows.Process32First(snap, &entry); err != nil {
		klog.V(3).Infof("Process32First: %v", err)
		return nil, nil
	}

	var records []Record
	for {
		if name, ok := decodeUTF16(entry.ExeFile[:]); ok {
			records = append(records, Record{PID: int(entry.ProcessID), Name: name})
		} else {
			klog.V(4).Infof("skipping pid %d: undecodable image name", entry.ProcessID)
		}

		if err := windows.Process32Next(snap, &entry); err != nil {
			// ERROR_NO_MORE_FILES ends every walk.
			break
		}
	}
	return records, nil
}
