package process

import (
	"unicode/utf16"

	"golang.org/x/text/cases"
	"k8s.io/klog/v2"
)

// Enumerate returns the pids of processes named name, in snapshot order.
//
// Names are compared after Unicode case folding. The caller's own pid is
// never returned. A snapshot failure yields an empty result.
func Enumerate(sys System, name string) []int {
	if name == "" {
		return nil
	}

	records, err := sys.Snapshot()
	if err != nil {
		klog.Warningf("enumerate %q: %v", name, err)
		return nil
	}

	self := sys.Getpid()
	fold := cases.Fold()
	want := fold.String(name)

	var pids []int
	for _, r := range records {
		if r.PID == self {
			continue
		}
		if fold.String(r.Name) == want {
			pids = append(pids, r.PID)
		}
	}

	klog.V(3).Infof("enumerate %q: %d of %d processes match", name, len(pids), len(records))
	return pids
}

// decodeUTF16 converts a NUL-terminated UTF-16 buffer to a string.
// It reports false for empty names and names holding unpaired surrogates.
func decodeUTF16(buf []uint16) (string, bool) {
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	buf = buf[:n]
	if len(buf) == 0 {
		return "", false
	}

	for i := 0; i < len(buf); i++ {
		c := rune(buf[i])
		if !utf16.IsSurrogate(c) {
			continue
		}
		// High surrogate must be followed by a low one.
		if c >= 0xDC00 || i+1 >= len(buf) {
			return "", false
		}
		next := rune(buf[i+1])
		if next < 0xDC00 || next > 0xDFFF {
			return "", false
		}
		i++
	}

	return string(utf16.Decode(buf)), true
}
