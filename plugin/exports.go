package plugin

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/standardbeagle/nsis-process/process"
)

// Exported function names.
const (
	FindProcess            = "FindProcess"
	FindProcessCurrentUser = "FindProcessCurrentUser"
	KillProcess            = "KillProcess"
	KillProcessCurrentUser = "KillProcessCurrentUser"
)

// Exports returns a registry holding the four process functions backed by f.
func Exports(f *process.Finder) *Registry {
	r := NewRegistry()
	for name, op := range map[string]func(string) process.Result{
		FindProcess:            f.FindProcess,
		FindProcessCurrentUser: f.FindProcessCurrentUser,
		KillProcess:            f.KillProcess,
		KillProcessCurrentUser: f.KillProcessCurrentUser,
	} {
		// Names are distinct constants, so Register cannot fail here.
		_ = r.Register(name, operation(name, op))
	}
	return r
}

// operation adapts a name-to-result operation to the stack protocol:
// pop exactly one name, push exactly one code.
func operation(name string, op func(string) process.Result) Func {
	return func(s *Stack) error {
		arg, err := s.Pop()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		result := op(arg)
		klog.V(1).Infof("%s(%q) = %s", name, arg, result)
		s.PushInt(result.Code())
		return nil
	}
}
