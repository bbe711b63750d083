package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed wraps every error caused by the content of a single command.
// The offending frame has been consumed, so the stream stays usable.
var ErrMalformed = errors.New("malformed command")

// ErrUnknownCommand indicates an unknown command verb was sent.
type ErrUnknownCommand struct {
	Verb string
}

func (e *ErrUnknownCommand) Error() string {
	return "unknown_command:" + e.Verb
}

// Unwrap lets errors.Is match ErrMalformed.
func (e *ErrUnknownCommand) Unwrap() error {
	return ErrMalformed
}

// Parser reads frames from a stream. Commands and responses share the
// framing; the caller picks which side of the conversation it reads.
type Parser struct {
	reader *bufio.Reader
}

// NewParser creates a parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{reader: bufio.NewReader(r)}
}

// ParseCommand reads the next command.
//
// Errors from the stream are returned as is. Errors in a command's content
// wrap ErrMalformed.
func (p *Parser) ParseCommand() (*Command, error) {
	raw, err := readFrame(p.reader)
	if err != nil {
		return nil, err
	}
	f, err := decodeFrame(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	verb, rest := cutField(f.head)
	if verb == "" {
		return nil, fmt.Errorf("%w: empty command", ErrMalformed)
	}
	cmd := &Command{Verb: strings.ToUpper(verb)}

	switch cmd.Verb {
	case VerbCall:
		cmd.Function, rest = cutField(rest)
		switch {
		case f.hasData && rest != "":
			return nil, fmt.Errorf("%w: CALL has both an inline value and a payload", ErrMalformed)
		case f.hasData:
			cmd.Value = f.payload
		case rest != "":
			cmd.Value = []byte(rest)
		}
	case VerbPing, VerbInfo, VerbQuit:
		if rest != "" || f.hasData {
			return nil, fmt.Errorf("%w: %s takes no arguments", ErrMalformed, cmd.Verb)
		}
	default:
		return nil, &ErrUnknownCommand{Verb: cmd.Verb}
	}
	return cmd, nil
}

// ParseResponse reads the next response.
func (p *Parser) ParseResponse() (*Response, error) {
	raw, err := readFrame(p.reader)
	if err != nil {
		return nil, err
	}
	f, err := decodeFrame(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}

	kind, rest := cutField(f.head)
	resp := &Response{Type: ResponseType(strings.ToUpper(kind))}

	switch resp.Type {
	case ResponseOK:
		resp.Message = rest
	case ResponseErr:
		resp.Code, resp.Message = cutField(rest)
	case ResponsePong:
	case ResponseJSON:
		if !f.hasData {
			return nil, errors.New("JSON response requires data")
		}
		resp.Data = f.payload
	case "":
		return nil, errors.New("empty response")
	default:
		return nil, fmt.Errorf("unknown response type: %s", resp.Type)
	}
	return resp, nil
}
