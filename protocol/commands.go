// Package protocol defines the text-based IPC protocol between an installer
// host and an out-of-process helper.
//
// Every message is a single frame ending in ";;". A frame may carry a
// base64 payload after a data marker:
//
//	CALL FindProcess -- 12\nYXBwLmV4ZQ==;;
//	OK 0;;
//
// The host sends commands (CALL, PING, INFO, QUIT) and reads exactly one
// response (OK, ERR, PONG, JSON) per command.
package protocol

// Command is a parsed command from the host.
type Command struct {
	Verb string

	// Function names the plugin function of a CALL.
	Function string

	// Value is the argument pushed for a CALL. It is nil when the call
	// carries no argument and empty (non-nil) for an explicit empty string.
	Value []byte
}

// Command verbs.
const (
	// VerbCall invokes a plugin function: CALL <Function> [VALUE | -- LEN\nB64];;
	VerbCall = "CALL"
	VerbPing = "PING"
	VerbInfo = "INFO"
	VerbQuit = "QUIT"
)

// Info is the payload of the INFO response.
type Info struct {
	Version   string   `json:"version"`
	PID       int      `json:"pid"`
	Functions []string `json:"functions"`
}

// FormatCommand renders cmd as a frame. A non-nil Value always travels as
// a payload, so names with spaces, separators or no characters at all
// survive the trip.
func FormatCommand(cmd *Command) []byte {
	head := cmd.Verb
	if cmd.Function != "" {
		head += " " + cmd.Function
	}
	return encodeFrame(head, cmd.Value, cmd.Value != nil)
}
