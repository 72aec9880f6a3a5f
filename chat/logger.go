package chat

import (
	"io"
	stdlog "log"
)

// Membership traces: room creation and removal, joins, leaves, drops.
var logger = stdlog.New(io.Discard, "[chat] ", stdlog.LstdFlags)

// SetLogger sends membership traces to w. They are discarded until called.
func SetLogger(w io.Writer) {
	logger.SetOutput(w)
}
