package protocol

import "io"

// ResponseType is the first word of a response frame.
type ResponseType string

const (
	ResponseOK   ResponseType = "OK"
	ResponseErr  ResponseType = "ERR"
	ResponseJSON ResponseType = "JSON"
	ResponsePong ResponseType = "PONG"
)

// Response is a parsed response from the helper.
type Response struct {
	Type    ResponseType
	Message string // OK text, or the ERR description
	Code    string // ERR only
	Data    []byte // JSON only
}

// ErrorCode classifies an ERR response.
type ErrorCode string

const (
	ErrInvalidCommand  ErrorCode = "invalid_command"
	ErrUnknownFunction ErrorCode = "unknown_function"
	ErrMissingParam    ErrorCode = "missing_param"
	ErrInternal        ErrorCode = "internal"
)

// FormatOK renders "OK [message];;".
func FormatOK(message string) []byte {
	if message == "" {
		return encodeFrame(string(ResponseOK), nil, false)
	}
	return encodeFrame(string(ResponseOK)+" "+message, nil, false)
}

// FormatErr renders "ERR code message;;".
func FormatErr(code ErrorCode, message string) []byte {
	return encodeFrame(string(ResponseErr)+" "+string(code)+" "+message, nil, false)
}

// FormatPong renders "PONG;;".
func FormatPong() []byte {
	return encodeFrame(string(ResponsePong), nil, false)
}

// FormatJSON renders data as a JSON payload frame.
func FormatJSON(data []byte) []byte {
	return encodeFrame(string(ResponseJSON), data, true)
}

// Writer writes frames to a stream.
type Writer struct {
	w io.Writer
}

// NewWriter creates a writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) write(frame []byte) error {
	_, err := w.w.Write(frame)
	return err
}

// WriteOK writes an OK response.
func (w *Writer) WriteOK(message string) error { return w.write(FormatOK(message)) }

// WriteErr writes an ERR response.
func (w *Writer) WriteErr(code ErrorCode, message string) error {
	return w.write(FormatErr(code, message))
}

// WritePong writes a PONG response.
func (w *Writer) WritePong() error { return w.write(FormatPong()) }

// WriteJSON writes a JSON response.
func (w *Writer) WriteJSON(data []byte) error { return w.write(FormatJSON(data)) }

// WriteCommand writes cmd.
func (w *Writer) WriteCommand(cmd *Command) error { return w.write(FormatCommand(cmd)) }

// WriteVerb writes a command that takes no arguments.
func (w *Writer) WriteVerb(verb string) error {
	return w.WriteCommand(&Command{Verb: verb})
}

// WriteCall writes a CALL of fn with value as its argument. The value is
// always sent, so an empty string reaches fn as an empty name.
func (w *Writer) WriteCall(fn, value string) error {
	return w.WriteCommand(&Command{Verb: VerbCall, Function: fn, Value: append([]byte{}, value...)})
}
