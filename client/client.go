// Package client is the session a presentation layer uses to talk to a relay
// server: join a room, send lines, and consume whatever the room broadcasts.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/shazow/relay-chat/chat/message"
)

const (
	dialTimeout    = 5 * time.Second
	incomingBuffer = 64
	maxLineSize    = 64 * 1024
)

// ErrConnect is wrapped by every error from Dial.
var ErrConnect = errors.New("connection to server failed")

// The error returned when joining or sending without a room name.
var ErrMissingRoom = errors.New("room name is required")

// The error returned when the session has no username.
var ErrMissingUsername = errors.New("username is required")

// Session is a connected client. Join and Send may be called while another
// goroutine drains Incoming.
type Session struct {
	conn     net.Conn
	username string
	enc      *message.Encoder
	incoming chan string

	mu     sync.Mutex
	err    error
	closed bool
	done   chan struct{}
}

// Dial connects to a relay server at addr.
func Dial(addr, username string) (*Session, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	logger.Printf("Connected to %s", conn.RemoteAddr())
	return NewSession(conn, username), nil
}

// NewSession starts a session over an established connection.
func NewSession(conn net.Conn, username string) *Session {
	s := &Session{
		conn:     conn,
		username: username,
		enc:      message.NewEncoder(conn),
		incoming: make(chan string, incomingBuffer),
		done:     make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// Username the session sends as.
func (s *Session) Username() string {
	return s.username
}

// Join the named room. Joining another room later leaves this one.
func (s *Session) Join(room string) error {
	if err := s.check(room); err != nil {
		return err
	}
	return s.enc.Encode(message.NewJoinMsg(room, s.username))
}

// Send text to the named room.
func (s *Session) Send(room, text string) error {
	if err := s.check(room); err != nil {
		return err
	}
	return s.enc.Encode(message.NewChatMsg(room, s.username, text))
}

func (s *Session) check(room string) error {
	if room == "" {
		return ErrMissingRoom
	}
	if s.username == "" {
		return ErrMissingUsername
	}
	return nil
}

// Incoming yields each line the server delivers, in order. The channel is
// closed when the connection ends; see Err for why.
func (s *Session) Incoming() <-chan string {
	return s.incoming
}

// Err returns the error that ended Incoming, or nil after a clean close.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close the session. Incoming is closed shortly after.
func (s *Session) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()
	return s.conn.Close()
}

func (s *Session) readLoop() {
	defer close(s.incoming)

	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 4096), maxLineSize)
	for scanner.Scan() {
		select {
		case s.incoming <- scanner.Text():
		case <-s.done:
			return
		}
	}

	err := scanner.Err()
	s.mu.Lock()
	if !s.closed {
		s.err = err
	}
	s.mu.Unlock()
	if err != nil {
		logger.Printf("Read loop ended: %s", err)
	}
}
