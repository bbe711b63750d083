//go:build windows

package process

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// sidIdentity is the token user SID of a process.
type sidIdentity struct {
	sid *windows.SID
}

func (s sidIdentity) Equal(other Identity) bool {
	o, ok := other.(sidIdentity)
	if !ok || s.sid == nil || o.sid == nil {
		return false
	}
	return s.sid.Equals(o.sid)
}

func (s sidIdentity) String() string {
	if s.sid == nil {
		return "<nil>"
	}
	return s.sid.String()
}

// resolveIdentity reads the user SID from the access token of pid.
func resolveIdentity(pid int) (Identity, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d: open process: %w", ErrIdentityUnavailable, pid, err)
	}
	defer windows.CloseHandle(h)

	var token windows.Token
	if err := windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token); err != nil {
		return nil, fmt.Errorf("%w: pid %d: open token: %w", ErrIdentityUnavailable, pid, err)
	}
	defer token.Close()

	// The sizing call fails with ERROR_INSUFFICIENT_BUFFER; only the size matters.
	var size uint32
	_ = windows.GetTokenInformation(token, windows.TokenUser, nil, 0, &size)
	if size == 0 {
		return nil, fmt.Errorf("%w: pid %d: empty token user", ErrIdentityUnavailable, pid)
	}

	buf := make([]byte, size)
	if err := windows.GetTokenInformation(token, windows.TokenUser, &buf[0], size, &size); err != nil {
		return nil, fmt.Errorf("%w: pid %d: token user: %w", ErrIdentityUnavailable, pid, err)
	}

	// The SID points into buf, so copy it out before buf goes away.
	user := (*windows.Tokenuser)(unsafe.Pointer(&buf[0]))
	sid, err := user.User.Sid.Copy()
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d: copy sid: %w", ErrIdentityUnavailable, pid, err)
	}
	return sidIdentity{sid: sid}, nil
}
