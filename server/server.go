// Package server runs the plugin functions behind the text protocol.
//
// A host starts the helper, writes commands to its input and reads one
// response per command from its output. Commands are handled strictly in
// order, one at a time.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"k8s.io/klog/v2"

	"github.com/standardbeagle/nsis-process/plugin"
	"github.com/standardbeagle/nsis-process/protocol"
)

// Config holds server configuration.
type Config struct {
	// Version is reported by INFO. Default: "dev"
	Version string
}

// Server dispatches protocol commands to a plugin registry.
type Server struct {
	registry *plugin.Registry
	config   Config
}

// New creates a server for registry.
func New(registry *plugin.Registry, config Config) *Server {
	if config.Version == "" {
		config.Version = "dev"
	}
	return &Server{registry: registry, config: config}
}

// Serve processes commands from r until EOF, QUIT, or ctx is done.
//
// Malformed commands are answered with ERR and skipped. Clean EOF between
// commands returns nil; a stream cut mid-command returns the read error.
// Cancellation returns ctx.Err() at once, even while a read is blocked;
// that read is abandoned and ends when r is closed.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	writer := protocol.NewWriter(w)
	cmds, stop := readCommands(r)
	defer stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var next parsed
		select {
		case <-ctx.Done():
			return ctx.Err()
		case next = <-cmds:
		}

		if err := next.err; err != nil {
			if err == io.EOF {
				return nil
			}
			if !errors.Is(err, protocol.ErrMalformed) {
				return err
			}
			klog.V(1).Infof("rejecting command: %v", err)
			if err := writer.WriteErr(protocol.ErrInvalidCommand, err.Error()); err != nil {
				return err
			}
			continue
		}

		quit, err := s.handleCommand(next.cmd, writer)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

type parsed struct {
	cmd *protocol.Command
	err error
}

// readCommands parses r on its own goroutine, handing over one command at
// a time. It stops after a stream error or once stop is called.
func readCommands(r io.Reader) (<-chan parsed, func()) {
	parser := protocol.NewParser(r)
	out := make(chan parsed)
	done := make(chan struct{})

	go func() {
		for {
			cmd, err := parser.ParseCommand()
			select {
			case out <- parsed{cmd: cmd, err: err}:
			case <-done:
				return
			}
			if err != nil && !errors.Is(err, protocol.ErrMalformed) {
				return
			}
		}
	}()
	return out, func() { close(done) }
}

// handleCommand answers a single command. It reports true after QUIT.
func (s *Server) handleCommand(cmd *protocol.Command, w *protocol.Writer) (bool, error) {
	switch cmd.Verb {
	case protocol.VerbPing:
		return false, w.WritePong()
	case protocol.VerbInfo:
		return false, s.handleInfo(w)
	case protocol.VerbQuit:
		return true, w.WriteOK("bye")
	case protocol.VerbCall:
		return false, s.handleCall(cmd, w)
	default:
		return false, w.WriteErr(protocol.ErrInvalidCommand, "unsupported verb "+cmd.Verb)
	}
}

// handleCall pushes the argument, if any, runs the function and returns the
// new top of stack. An empty argument is still an argument.
func (s *Server) handleCall(cmd *protocol.Command, w *protocol.Writer) error {
	fn := cmd.Function
	if fn == "" {
		return w.WriteErr(protocol.ErrMissingParam, "function name required")
	}

	stack := plugin.NewStack()
	if cmd.Value != nil {
		stack.Push(string(cmd.Value))
	}

	if err := s.registry.Call(fn, stack); err != nil {
		switch {
		case errors.Is(err, plugin.ErrUnknownFunction):
			return w.WriteErr(protocol.ErrUnknownFunction, err.Error())
		case errors.Is(err, plugin.ErrStackEmpty):
			return w.WriteErr(protocol.ErrMissingParam, err.Error())
		default:
			return w.WriteErr(protocol.ErrInternal, err.Error())
		}
	}

	top, err := stack.Pop()
	if err != nil {
		return w.WriteErr(protocol.ErrInternal, fn+" returned no value")
	}
	return w.WriteOK(top)
}

func (s *Server) handleInfo(w *protocol.Writer) error {
	data, err := json.Marshal(protocol.Info{
		Version:   s.config.Version,
		PID:       os.Getpid(),
		Functions: s.registry.Names(),
	})
	if err != nil {
		return w.WriteErr(protocol.ErrInternal, "failed to marshal info")
	}
	return w.WriteJSON(data)
}
