package tcpd

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// The error returned when sending to a connection that was already closed.
var ErrConnClosed = errors.New("connection closed")

// Conn is a single participant's TCP stream. Reads belong to the goroutine
// handling the connection; Send may be called from any goroutine.
type Conn struct {
	net.Conn

	id           string
	connected    time.Time
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}

	bytesIn  atomic.Uint64
	bytesOut atomic.Uint64
}

// NewConn wraps conn with a fresh identity. A positive writeTimeout bounds
// every Send.
func NewConn(conn net.Conn, writeTimeout time.Duration) *Conn {
	return &Conn{
		Conn:         conn,
		id:           uuid.NewString(),
		connected:    time.Now(),
		writeTimeout: writeTimeout,
		closed:       make(chan struct{}),
	}
}

// ID is unique per connection.
func (c *Conn) ID() string {
	return c.id
}

// Connected returns when the connection was accepted.
func (c *Conn) Connected() time.Time {
	return c.connected
}

func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	c.bytesIn.Add(uint64(n))
	return n, err
}

// Send writes line followed by a newline.
func (c *Conn) Send(line string) error {
	if c.Closed() {
		return ErrConnClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	n, err := io.WriteString(c.Conn, line+"\n")
	c.bytesOut.Add(uint64(n))
	return err
}

// Close the connection. Only the first call closes the socket.
func (c *Conn) Close() error {
	err := ErrConnClosed
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.Conn.Close()
	})
	return err
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// BytesIn is the number of bytes read so far.
func (c *Conn) BytesIn() uint64 {
	return c.bytesIn.Load()
}

// BytesOut is the number of bytes written so far.
func (c *Conn) BytesOut() uint64 {
	return c.bytesOut.Load()
}
