// Package processtest provides an in-memory process.System for tests.
package processtest

import (
	"fmt"
	"sync"

	"github.com/standardbeagle/nsis-process/process"
)

// User is a principal for the fake system. Users compare by name.
type User string

// Equal reports whether other is the same User.
func (u User) Equal(other process.Identity) bool {
	o, ok := other.(User)
	return ok && o == u
}

func (u User) String() string {
	return string(u)
}

// System is a scripted process table.
//
// Pids missing from Owners have no resolvable identity. Pids present in
// KillErrs fail to terminate with the mapped error.
type System struct {
	Self        int
	Records     []process.Record
	SnapshotErr error
	Owners      map[int]process.Identity
	KillErrs    map[int]error

	// RemoveOnKill drops terminated pids from later snapshots.
	RemoveOnKill bool

	mu        sync.Mutex
	killed    []int
	snapshots int
}

// Ensure System implements process.System interface.
var _ process.System = (*System)(nil)

// Add appends a process owned by owner. A nil owner leaves it unresolvable.
func (s *System) Add(pid int, name string, owner process.Identity) *System {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Records = append(s.Records, process.Record{PID: pid, Name: name})
	if owner != nil {
		if s.Owners == nil {
			s.Owners = make(map[int]process.Identity)
		}
		s.Owners[pid] = owner
	}
	return s
}

// Snapshot returns a copy of Records.
func (s *System) Snapshot() ([]process.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots++
	if s.SnapshotErr != nil {
		return nil, s.SnapshotErr
	}
	out := make([]process.Record, len(s.Records))
	copy(out, s.Records)
	return out, nil
}

// Identity returns the scripted owner of pid.
func (s *System) Identity(pid int) (process.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.Owners[pid]; ok {
		return id, nil
	}
	return nil, fmt.Errorf("%w: pid %d: access denied", process.ErrIdentityUnavailable, pid)
}

// Terminate records the attempt and returns the scripted error.
func (s *System) Terminate(pid int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.killed = append(s.killed, pid)
	if err, ok := s.KillErrs[pid]; ok {
		return err
	}
	if s.RemoveOnKill {
		for i := len(s.Records) - 1; i >= 0; i-- {
			if s.Records[i].PID == pid {
				s.Records = append(s.Records[:i], s.Records[i+1:]...)
			}
		}
	}
	return nil
}

// Getpid returns Self.
func (s *System) Getpid() int {
	return s.Self
}

// Killed returns the pids passed to Terminate, in call order.
func (s *System) Killed() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, len(s.killed))
	copy(out, s.killed)
	return out
}

// Snapshots returns how many snapshots were taken.
func (s *System) Snapshots() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots
}
