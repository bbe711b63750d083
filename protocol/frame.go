package protocol

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

const (
	// Terminator ends every frame.
	Terminator = ";;"

	// DataMarker precedes the encoded length of a frame payload.
	DataMarker = "--"
)

// frame is one message split into its header and optional payload.
type frame struct {
	head    string
	payload []byte
	hasData bool
}

func encodeFrame(head string, payload []byte, withData bool) []byte {
	var b strings.Builder
	b.WriteString(head)
	if withData {
		enc := base64.StdEncoding.EncodeToString(payload)
		fmt.Fprintf(&b, " %s %d\n%s", DataMarker, len(enc), enc)
	}
	b.WriteString(Terminator)
	return []byte(b.String())
}

// readFrame returns the raw text before the next terminator.
// io.EOF is returned only when the stream ends between frames; a stream
// ending inside a frame yields io.ErrUnexpectedEOF.
func readFrame(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		chunk, err := r.ReadString(Terminator[0])
		b.WriteString(chunk)
		if err != nil {
			if err != io.EOF {
				return "", err
			}
			if strings.TrimSpace(b.String()) == "" {
				return "", io.EOF
			}
			return "", fmt.Errorf("missing terminator %q: %w", Terminator, io.ErrUnexpectedEOF)
		}

		// A lone ';' belongs to the frame; ";;" ends it.
		if next, err := r.Peek(1); err == nil && next[0] == Terminator[1] {
			_, _ = r.ReadByte()
			s := b.String()
			return s[:len(s)-1], nil
		}
	}
}

// decodeFrame parses "HEAD [-- LEN\nB64]". Leading blank space between
// frames is ignored.
func decodeFrame(raw string) (frame, error) {
	head, body, hasBody := strings.Cut(strings.TrimLeftFunc(raw, unicode.IsSpace), "\n")
	head = strings.TrimSpace(head)

	fields := strings.Fields(head)
	n := len(fields)
	switch {
	case n > 0 && fields[n-1] == DataMarker:
		return frame{}, errors.New("data marker without length")

	case n > 1 && fields[n-2] == DataMarker:
		length, err := strconv.Atoi(fields[n-1])
		if err != nil || length < 0 {
			return frame{}, fmt.Errorf("invalid data length %q", fields[n-1])
		}
		if !hasBody {
			return frame{}, errors.New("data length without payload line")
		}
		body = strings.TrimRightFunc(body, unicode.IsSpace)
		if len(body) != length {
			return frame{}, fmt.Errorf("data length mismatch: expected %d, got %d", length, len(body))
		}
		data, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return frame{}, fmt.Errorf("invalid base64 payload: %w", err)
		}
		if data == nil {
			data = []byte{}
		}
		return frame{
			head:    strings.TrimSpace(head[:strings.LastIndex(head, DataMarker)]),
			payload: data,
			hasData: true,
		}, nil

	case hasBody && strings.TrimSpace(body) != "":
		return frame{}, errors.New("payload without data marker")
	}
	return frame{head: head}, nil
}

// cutField splits off the first whitespace-separated field of s.
func cutField(s string) (field, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
