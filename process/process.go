package process

import (
	"errors"
	"os"
)

// ExitCode is the exit status handed to terminated processes on Windows.
const ExitCode = 1

var (
	// ErrSnapshot is returned when the process table cannot be captured.
	ErrSnapshot = errors.New("process snapshot unavailable")
	// ErrIdentityUnavailable is returned when a process owner cannot be resolved.
	ErrIdentityUnavailable = errors.New("process identity unavailable")
	// ErrInvalidPID is returned for pids that can never name a single process.
	ErrInvalidPID = errors.New("invalid pid")
)

// Record is a single entry of a process table snapshot.
type Record struct {
	PID  int
	Name string
}

// Result is the outcome reported to the host.
type Result int

const (
	// Success means the operation matched (and, for kills, terminated) processes.
	Success Result = 0
	// Failure covers every other outcome, including "nothing matched".
	Failure Result = 1
)

// String returns a human-readable result name.
func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Code returns the integer the host protocol carries for r.
func (r Result) Code() int {
	return int(r)
}

func resultOf(ok bool) Result {
	if ok {
		return Success
	}
	return Failure
}

// Options tune a find or kill operation.
type Options struct {
	// CurrentUser restricts matches to processes owned by the caller's principal.
	CurrentUser bool
}

// System is the operating system surface the Finder drives.
//
// Implementations must release every OS resource they acquire before
// returning, on success and failure alike.
type System interface {
	// Snapshot returns the live process table in traversal order.
	// Entries whose names cannot be decoded are omitted.
	Snapshot() ([]Record, error)

	// Identity resolves the principal owning pid.
	// Failures wrap ErrIdentityUnavailable.
	Identity(pid int) (Identity, error)

	// Terminate requests forced termination of pid without waiting for exit.
	Terminate(pid int) error

	// Getpid returns the caller's own process id.
	Getpid() int
}

// OS is the System backed by the running operating system.
type OS struct{}

// Ensure OS implements System interface.
var _ System = OS{}

// Snapshot captures the process table.
func (OS) Snapshot() ([]Record, error) {
	return snapshot()
}

// Identity resolves the owner of pid.
func (OS) Identity(pid int) (Identity, error) {
	return resolveIdentity(pid)
}

// Terminate forcibly ends pid.
func (OS) Terminate(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return terminatePid(pid)
}

// Getpid returns the current process id.
func (OS) Getpid() int {
	return os.Getpid()
}
