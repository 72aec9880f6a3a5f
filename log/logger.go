package log

import (
	"os"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"

	relaychat "github.com/shazow/relay-chat"
	"github.com/shazow/relay-chat/chat"
	"github.com/shazow/relay-chat/chat/message"
	"github.com/shazow/relay-chat/client"
	"github.com/shazow/relay-chat/tcpd"
)

var logLevels = []log.Level{
	log.Warning,
	log.Info,
	log.Debug,
}

// Logger Global Logger
var Logger *golog.Logger

// SetLogger Set the global logger
func SetLogger(l *golog.Logger) {
	Logger = l
	relaychat.SetLogger(l)
}

// Level returns the log level for a number of -v flags.
func Level(numVerbose int) log.Level {
	if numVerbose >= len(logLevels) {
		numVerbose = len(logLevels) - 1
	}
	return logLevels[numVerbose]
}

// Init Initialize the global logger
func Init(numVerbose int) {
	logLevel := Level(numVerbose)
	SetLogger(golog.New(os.Stderr, logLevel))

	if logLevel == log.Debug {
		// Enable logging from submodules
		chat.SetLogger(os.Stderr)
		message.SetLogger(os.Stderr)
		tcpd.SetLogger(os.Stderr)
		client.SetLogger(os.Stderr)
	}
}
