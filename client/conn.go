// Package client drives an out-of-process helper over the text protocol.
//
// A Conn wraps any reader/writer pair speaking the protocol, typically the
// stdout/stdin of a spawned "nsisproc serve" child:
//
//	conn, err := client.Spawn(ctx, "nsisproc", "serve")
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	result, err := conn.KillProcessCurrentUser("app.exe")
//
// # Thread Safety
//
// Conn is thread-safe. Requests are serialized internally (the protocol is
// request-response, not pipelined).
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/standardbeagle/nsis-process/plugin"
	"github.com/standardbeagle/nsis-process/process"
	"github.com/standardbeagle/nsis-process/protocol"
)

var (
	// ErrConnectionClosed is returned when operating on a closed connection.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrServerError is returned when the helper returns an error response.
	ErrServerError = errors.New("helper error")
	// ErrUnexpectedResponse is returned for responses of the wrong type or shape.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// Conn is a request/response session with a helper.
type Conn struct {
	mu     sync.Mutex
	parser *protocol.Parser
	writer *protocol.Writer
	closed bool

	// closeFn releases the transport; set by Spawn.
	closeFn func() error
}

// New creates a connection reading responses from r and writing commands to w.
func New(r io.Reader, w io.Writer) *Conn {
	return &Conn{
		parser: protocol.NewParser(r),
		writer: protocol.NewWriter(w),
	}
}

// Close ends the session. A spawned helper is asked to quit and waited for.
// After Close, the Conn cannot be reused.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.closeFn == nil {
		return nil
	}
	// Best effort: the helper may already be gone.
	if err := c.writer.WriteVerb(protocol.VerbQuit); err == nil {
		_, _ = c.parser.ParseResponse()
	}
	return c.closeFn()
}

// Call invokes fn on the helper with value pushed as its argument.
// An empty value is pushed as an empty name, as it would be in-process.
func (c *Conn) Call(fn, value string) (process.Result, error) {
	resp, err := c.execute(func(w *protocol.Writer) error {
		return w.WriteCall(fn, value)
	})
	if err != nil {
		return process.Failure, err
	}

	switch resp.Type {
	case protocol.ResponseOK:
		n, err := strconv.Atoi(resp.Message)
		if err != nil || (n != process.Success.Code() && n != process.Failure.Code()) {
			return process.Failure, fmt.Errorf("%w: OK %q", ErrUnexpectedResponse, resp.Message)
		}
		return process.Result(n), nil
	case protocol.ResponseErr:
		return process.Failure, fmt.Errorf("%w: [%s] %s", ErrServerError, resp.Code, resp.Message)
	default:
		return process.Failure, fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Type)
	}
}

// FindProcess calls the helper's FindProcess.
func (c *Conn) FindProcess(name string) (process.Result, error) {
	return c.Call(plugin.FindProcess, name)
}

// FindProcessCurrentUser calls the helper's FindProcessCurrentUser.
func (c *Conn) FindProcessCurrentUser(name string) (process.Result, error) {
	return c.Call(plugin.FindProcessCurrentUser, name)
}

// KillProcess calls the helper's KillProcess.
func (c *Conn) KillProcess(name string) (process.Result, error) {
	return c.Call(plugin.KillProcess, name)
}

// KillProcessCurrentUser calls the helper's KillProcessCurrentUser.
func (c *Conn) KillProcessCurrentUser(name string) (process.Result, error) {
	return c.Call(plugin.KillProcessCurrentUser, name)
}

// Ping sends a ping to the helper and waits for a pong response.
func (c *Conn) Ping() error {
	resp, err := c.execute(func(w *protocol.Writer) error {
		return w.WriteVerb(protocol.VerbPing)
	})
	if err != nil {
		return err
	}
	if resp.Type != protocol.ResponsePong {
		return fmt.Errorf("%w: expected PONG, got %s", ErrUnexpectedResponse, resp.Type)
	}
	return nil
}

// Info returns the helper's version, pid and exported functions.
func (c *Conn) Info() (*protocol.Info, error) {
	resp, err := c.execute(func(w *protocol.Writer) error {
		return w.WriteVerb(protocol.VerbInfo)
	})
	if err != nil {
		return nil, err
	}

	switch resp.Type {
	case protocol.ResponseJSON:
		var info protocol.Info
		if err := json.Unmarshal(resp.Data, &info); err != nil {
			return nil, fmt.Errorf("failed to decode info: %w", err)
		}
		return &info, nil
	case protocol.ResponseErr:
		return nil, fmt.Errorf("%w: [%s] %s", ErrServerError, resp.Code, resp.Message)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Type)
	}
}

// execute sends one command and reads its response.
func (c *Conn) execute(send func(w *protocol.Writer) error) (*protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}

	if err := send(c.writer); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}

	resp, err := c.parser.ParseResponse()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, nil
}
