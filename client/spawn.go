package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Spawn starts path with args as a helper and connects to its stdin/stdout.
// The helper's stderr is passed through for its logs.
func Spawn(ctx context.Context, path string, args ...string) (*Conn, error) {
	return SpawnCmd(exec.CommandContext(ctx, path, args...))
}

// SpawnCmd starts a prepared helper command and connects to it.
// cmd must not have Stdin or Stdout set.
func SpawnCmd(cmd *exec.Cmd) (*Conn, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to start helper %s: %w", cmd.Path, err)
	}

	c := New(stdout, stdin)
	c.closeFn = func() error {
		closeErr := stdin.Close()
		waitErr := cmd.Wait()
		return errors.Join(waitErr, closeErr)
	}
	return c, nil
}
