package client

import (
	"io"
	stdlog "log"
)

var logger = stdlog.New(io.Discard, "[client] ", stdlog.LstdFlags)

// SetLogger sends session lifecycle events, such as the dial and the end of
// the read loop, to w.
func SetLogger(w io.Writer) {
	logger.SetOutput(w)
}
