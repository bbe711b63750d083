//go:build !windows

package process

import (
	"fmt"
	"strconv"
)

// uidIdentity is the real user id of a process.
type uidIdentity uint32

func (u uidIdentity) Equal(other Identity) bool {
	o, ok := other.(uidIdentity)
	return ok && o == u
}

func (u uidIdentity) String() string {
	return "uid:" + strconv.FormatUint(uint64(u), 10)
}

// resolveIdentity reads the real uid of pid.
func resolveIdentity(pid int) (Identity, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("%w: %w: %d", ErrIdentityUnavailable, ErrInvalidPID, pid)
	}

	uids, err := procHandle(int32(pid)).Uids()
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d: uids: %w", ErrIdentityUnavailable, pid, err)
	}
	if len(uids) == 0 || uids[0] < 0 {
		return nil, fmt.Errorf("%w: pid %d: no uid", ErrIdentityUnavailable, pid)
	}
	return uidIdentity(uids[0]), nil
}
