package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

// DevVersion is reported by helpers built without a release version.
const DevVersion = "dev"

// ErrVersionMismatch is returned when the helper's version is incompatible.
var ErrVersionMismatch = errors.New("version mismatch")

// ParseVersion parses a semantic version with an optional "v" prefix.
func ParseVersion(v string) (semver.Version, error) {
	parsed, err := semver.Make(strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V"))
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid version %q: %w", v, err)
	}
	return parsed, nil
}

// Compatible reports whether a helper at version helper can serve a client at
// version want. Major and minor must match. Development builds on either side
// are always compatible.
func Compatible(want, helper string) (bool, error) {
	if want == DevVersion || helper == DevVersion {
		return true, nil
	}

	w, err := ParseVersion(want)
	if err != nil {
		return false, err
	}
	h, err := ParseVersion(helper)
	if err != nil {
		return false, err
	}
	return w.Major == h.Major && w.Minor == h.Minor, nil
}

// CheckVersion asks the helper for its version and fails with
// ErrVersionMismatch unless it is compatible with want.
func (c *Conn) CheckVersion(want string) error {
	info, err := c.Info()
	if err != nil {
		return fmt.Errorf("failed to get helper version: %w", err)
	}

	ok, err := Compatible(want, info.Version)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: client=%s helper=%s", ErrVersionMismatch, want, info.Version)
	}
	return nil
}
