package tcpd

import (
	"net"
	"time"

	"github.com/shazow/rateio"
)

const defaultKeepAlive = 30 * time.Second

// Listener accepts relay connections.
type Listener struct {
	net.Listener
	RateLimit    func() rateio.Limiter
	WriteTimeout time.Duration
	KeepAlive    time.Duration
}

// Listen makes a TCP listener socket.
func Listen(laddr string) (*Listener, error) {
	socket, err := net.Listen("tcp", laddr)
	if err != nil {
		return nil, err
	}
	l := Listener{Listener: socket, KeepAlive: defaultKeepAlive}
	return &l, nil
}

func (l *Listener) handleConn(conn net.Conn) *Conn {
	if tcpConn, ok := conn.(*net.TCPConn); ok && l.KeepAlive > 0 {
		tcpConn.SetKeepAlive(true)
		tcpConn.SetKeepAlivePeriod(l.KeepAlive)
	}
	if l.RateLimit != nil {
		conn = ReadLimitConn(conn, l.RateLimit())
	}
	return NewConn(conn, l.WriteTimeout)
}

// ServeConn accepts incoming connections and yields them. The channel is
// closed once the listener stops accepting.
func (l *Listener) ServeConn() <-chan *Conn {
	ch := make(chan *Conn)

	go func() {
		defer l.Close()
		defer close(ch)

		for {
			conn, err := l.Accept()
			if err != nil {
				logger.Printf("Failed to accept connection: %v", err)
				return
			}

			logger.Printf("Accepted connection from %s", conn.RemoteAddr())
			ch <- l.handleConn(conn)
		}
	}()

	return ch
}
