package tcpd

import (
	"io"
	stdlog "log"
)

// Accept loop events, one line per connection.
var logger = stdlog.New(io.Discard, "[tcpd] ", stdlog.LstdFlags|stdlog.Lmicroseconds)

// SetLogger sends listener events to w. Pass io.Discard to silence them.
func SetLogger(w io.Writer) {
	logger.SetOutput(w)
}
