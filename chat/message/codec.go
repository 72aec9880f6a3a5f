package message

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// MaxFrameSize is the default upper bound for a single inbound frame.
const MaxFrameSize = 4096

// ErrInvalidFrame is wrapped by every error caused by a malformed payload.
// Such frames are dropped by readers; the stream itself stays usable.
var ErrInvalidFrame = errors.New("invalid frame")

// ErrFrameTooLong is returned when a frame exceeds the decoder's limit.
var ErrFrameTooLong = fmt.Errorf("%w: frame too long", ErrInvalidFrame)

// wireMsg is the JSON shape of a frame. Message is a pointer so a missing
// field can be told apart from an empty one.
type wireMsg struct {
	Action   string  `json:"action"`
	Room     string  `json:"room"`
	Username string  `json:"username"`
	Message  *string `json:"message,omitempty"`
}

// Encode serializes m as one newline-terminated JSON frame.
func Encode(m Message) ([]byte, error) {
	w := wireMsg{
		Action:   m.Action(),
		Room:     m.Room(),
		Username: m.Username(),
	}
	switch m := m.(type) {
	case *JoinMsg:
	case *ChatMsg:
		text := m.Text()
		w.Message = &text
	default:
		return nil, fmt.Errorf("encode: unsupported message type %T", m)
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Decode parses a single frame, without its delimiter.
func Decode(frame []byte) (Message, error) {
	var w wireMsg
	if err := json.Unmarshal(frame, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if w.Room == "" {
		return nil, fmt.Errorf("%w: missing room", ErrInvalidFrame)
	}
	if w.Username == "" {
		return nil, fmt.Errorf("%w: missing username", ErrInvalidFrame)
	}

	switch w.Action {
	case ActionJoin:
		return NewJoinMsg(w.Room, w.Username), nil
	case ActionMessage:
		if w.Message == nil {
			return nil, fmt.Errorf("%w: missing message", ErrInvalidFrame)
		}
		return NewChatMsg(w.Room, w.Username, *w.Message), nil
	}
	return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidFrame, w.Action)
}

// Decoder reads newline-delimited frames from a stream.
type Decoder struct {
	r   *bufio.Reader
	max int
}

// NewDecoder returns a Decoder reading from r. Frames longer than maxFrame
// bytes are skipped; maxFrame <= 0 means MaxFrameSize.
func NewDecoder(r io.Reader, maxFrame int) *Decoder {
	if maxFrame <= 0 {
		maxFrame = MaxFrameSize
	}
	return &Decoder{
		r:   bufio.NewReader(r),
		max: maxFrame,
	}
}

// ReadFrame returns the next frame with its line ending trimmed. Errors from
// the underlying reader, including io.EOF, are returned as is.
func (d *Decoder) ReadFrame() ([]byte, error) {
	var frame []byte
	tooLong := false
	for {
		chunk, err := d.r.ReadSlice('\n')
		if !tooLong {
			frame = append(frame, chunk...)
			if len(bytes.TrimRight(frame, "\r\n")) > d.max {
				tooLong = true
				frame = nil
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			if err == io.EOF && len(frame) > 0 {
				// Unterminated final frame; EOF surfaces on the next read.
				break
			}
			return nil, err
		}
		break
	}
	if tooLong {
		logger.Printf("Dropped frame longer than %d bytes", d.max)
		return nil, ErrFrameTooLong
	}
	return bytes.TrimRight(frame, "\r\n"), nil
}

// Decode reads and parses the next frame.
func (d *Decoder) Decode() (Message, error) {
	frame, err := d.ReadFrame()
	if err != nil {
		return nil, err
	}
	return Decode(frame)
}

// Encoder writes frames to a stream. It is safe for concurrent use.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(m Message) error {
	b, err := Encode(m)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.w.Write(b)
	return err
}
