/*
Package relaychat is a multi-room text relay served over plain TCP.

tcpd subdirectory contains the socket-related pieces which know nothing about
rooms.

chat subdirectory contains the room registry and the wire messages, which know
nothing about sockets.

The Host type is the glue between the tcpd and chat pieces: it runs one
handler per connection, decoding frames and dispatching them to the registry.

client subdirectory contains the session used by presentation layers to talk
to a Host.
*/
package relaychat
