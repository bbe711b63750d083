package process

import (
	"k8s.io/klog/v2"
)

// Finder implements the find and kill operations on top of a System.
//
// A Finder holds no state between calls; every operation re-enumerates.
type Finder struct {
	sys System
}

// NewFinder creates a Finder driving sys.
func NewFinder(sys System) *Finder {
	return &Finder{sys: sys}
}

// Default returns a Finder for the running operating system.
func Default() *Finder {
	return NewFinder(OS{})
}

// Select returns the pids an operation on name would act on.
//
// With opts.CurrentUser, only processes whose owner matches the caller's
// principal are kept. Processes whose owner cannot be resolved are dropped.
// If the caller's own principal cannot be resolved, no restriction applies.
func (f *Finder) Select(name string, opts Options) []int {
	pids := Enumerate(f.sys, name)
	if !opts.CurrentUser || len(pids) == 0 {
		return pids
	}

	self, err := f.sys.Identity(f.sys.Getpid())
	if err != nil {
		klog.V(2).Infof("not restricting %q to current user: %v", name, err)
		return pids
	}

	owned := make([]int, 0, len(pids))
	for _, pid := range pids {
		id, err := f.sys.Identity(pid)
		if err != nil {
			// Access denied is the normal outcome for another user's process.
			klog.V(2).Infof("skipping pid %d: %v", pid, err)
			continue
		}
		if SamePrincipal(self, id) {
			owned = append(owned, pid)
		}
	}
	return owned
}

// Find reports Success if at least one process named name is selected.
func (f *Finder) Find(name string, opts Options) Result {
	return resultOf(len(f.Select(name, opts)) > 0)
}

// Kill terminates every selected process named name.
//
// It reports Success only if the selection is non-empty and every
// termination request succeeded. A failed request does not stop the
// remaining ones, and processes already terminated stay terminated.
func (f *Finder) Kill(name string, opts Options) Result {
	pids := f.Select(name, opts)
	if len(pids) == 0 {
		return Failure
	}

	ok := true
	for _, pid := range pids {
		if !f.terminate(pid) {
			ok = false
		}
	}
	return resultOf(ok)
}

func (f *Finder) terminate(pid int) bool {
	if err := f.sys.Terminate(pid); err != nil {
		klog.Warningf("terminate pid %d: %v", pid, err)
		return false
	}
	klog.V(2).Infof("terminated pid %d", pid)
	return true
}

// FindProcess reports whether any other process named name is running.
func (f *Finder) FindProcess(name string) Result {
	return f.Find(name, Options{})
}

// FindProcessCurrentUser is FindProcess restricted to the caller's principal.
func (f *Finder) FindProcessCurrentUser(name string) Result {
	return f.Find(name, Options{CurrentUser: true})
}

// KillProcess terminates every other process named name.
func (f *Finder) KillProcess(name string) Result {
	return f.Kill(name, Options{})
}

// KillProcessCurrentUser is KillProcess restricted to the caller's principal.
func (f *Finder) KillProcessCurrentUser(name string) Result {
	return f.Kill(name, Options{CurrentUser: true})
}
