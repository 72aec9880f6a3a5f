package message

import (
	"io"
	stdlog "log"
)

var logger = stdlog.New(io.Discard, "[message] ", stdlog.LstdFlags)

// SetLogger sends notices about skipped frames to w.
func SetLogger(w io.Writer) {
	logger.SetOutput(w)
}
