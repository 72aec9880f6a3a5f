/*
`chat` package is a transport-agnostic room registry for the relay: it tracks
which members are in which named room and fans rendered lines out to them.

This package should not know anything about sockets. Members are anything that
can be identified and written to, so the registry can be exercised with
in-memory fakes as easily as with TCP connections.
*/

package chat
