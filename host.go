package relaychat

import (
	"errors"
	"io"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/shazow/rateio"
	"github.com/sourcegraph/conc"

	"github.com/shazow/relay-chat/chat"
	"github.com/shazow/relay-chat/chat/message"
	"github.com/shazow/relay-chat/internal/humantime"
	"github.com/shazow/relay-chat/metrics"
	"github.com/shazow/relay-chat/set"
	"github.com/shazow/relay-chat/tcpd"
)

// HostConfig holds the per-connection knobs of a Host.
type HostConfig struct {
	// MaxFrame bounds a single inbound frame, in bytes. Zero means
	// message.MaxFrameSize.
	MaxFrame int

	// MessageRate frames are accepted per RatePeriod on each connection;
	// the rest are dropped. Zero disables the limit.
	MessageRate int
	RatePeriod  time.Duration
}

// Host is the bridge between tcpd and chat modules
type Host struct {
	listener *tcpd.Listener
	rooms    *chat.Registry
	metrics  *metrics.Metrics
	config   HostConfig

	// Every open connection, joined to a room or not.
	conns *set.Set

	wg        conc.WaitGroup
	closeOnce sync.Once
	closed    chan struct{}
}

// NewHost creates a Host on top of an existing listener.
func NewHost(listener *tcpd.Listener, rooms *chat.Registry, config HostConfig) *Host {
	if config.RatePeriod <= 0 {
		config.RatePeriod = time.Second
	}
	h := &Host{
		listener: listener,
		rooms:    rooms,
		metrics:  metrics.New(),
		config:   config,
		conns:    set.New(),
		closed:   make(chan struct{}),
	}
	h.metrics.RegisterRooms(func() float64 {
		return float64(rooms.Len())
	})
	return h
}

// Rooms returns the registry this host dispatches to.
func (h *Host) Rooms() *chat.Registry {
	return h.rooms
}

// Metrics returns the host's collectors.
func (h *Host) Metrics() *metrics.Metrics {
	return h.metrics
}

// Connections returns the number of open connections right now.
func (h *Host) Connections() int {
	return h.conns.Len()
}

// Serve accepts connections until the listener is closed, handling each in
// its own goroutine. It returns once every handler has finished.
func (h *Host) Serve() {
	for conn := range h.listener.ServeConn() {
		conn := conn
		h.metrics.Accepted.Inc()
		h.wg.Go(func() {
			h.Connect(conn)
		})
	}
	h.wg.Wait()
}

// Close stops accepting and closes every open connection.
func (h *Host) Close() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.closed)
		err = h.listener.Close()
		h.rooms.Close()
		// Connections that never joined a room.
		for _, item := range h.conns.Items() {
			item.Value().(*tcpd.Conn).Close()
		}
	})
	return err
}

func (h *Host) isClosed() bool {
	select {
	case <-h.closed:
		return true
	default:
		return false
	}
}

// Connect runs the handler for a single connection until it disconnects.
func (h *Host) Connect(conn *tcpd.Conn) {
	h.conns.Add(set.Itemize(conn.ID(), conn))
	h.metrics.Connections.Inc()

	defer func() {
		h.rooms.Leave(conn)
		h.conns.Remove(conn.ID())
		h.metrics.Connections.Dec()
		conn.Close()

		logger.Infof("[%s] Disconnected after %s (%s in, %s out)",
			conn.RemoteAddr(),
			humantime.Since(conn.Connected()),
			humanize.Bytes(conn.BytesIn()),
			humanize.Bytes(conn.BytesOut()),
		)
	}()

	if h.isClosed() {
		// Raced with Close after it walked the connection set.
		return
	}
	logger.Debugf("[%s] Connected: %s", conn.RemoteAddr(), conn.ID())

	var ratelimit rateio.Limiter
	if h.config.MessageRate > 0 {
		ratelimit = rateio.NewSimpleLimiter(h.config.MessageRate, h.config.RatePeriod)
	}

	dec := message.NewDecoder(conn, h.config.MaxFrame)
	for {
		m, err := dec.Decode()
		if errors.Is(err, message.ErrInvalidFrame) {
			logger.Debugf("[%s] Dropped frame: %s", conn.RemoteAddr(), err)
			h.metrics.InvalidFrames.Inc()
			continue
		} else if err == io.EOF {
			// Closed
			break
		} else if err != nil {
			logger.Debugf("[%s] Read error: %s", conn.RemoteAddr(), err)
			break
		}

		if conn.Closed() {
			// Dropped by a failed write; frames still buffered are stale.
			break
		}

		if ratelimit != nil && ratelimit.Count(1) != nil {
			logger.Debugf("[%s] Rate limited: %s", conn.RemoteAddr(), m)
			h.metrics.RateLimited.Inc()
			continue
		}

		h.metrics.Frames.WithLabelValues(m.Action()).Inc()
		h.dispatch(conn, m)
	}
}

func (h *Host) dispatch(conn *tcpd.Conn, m message.Message) {
	var res chat.BroadcastResult
	switch m := m.(type) {
	case *message.JoinMsg:
		var err error
		res, err = h.rooms.Join(m.Room(), conn, m.Username())
		if err != nil {
			logger.Warningf("[%s] Failed to join %q: %s", conn.RemoteAddr(), m.Room(), err)
			return
		}
		if conn.Closed() {
			// A concurrent broadcast dropped conn before it was added.
			h.rooms.Leave(conn)
		}
		logger.Infof("[%s] %s joined %s", conn.RemoteAddr(), m.Username(), m.Room())
	case *message.ChatMsg:
		res = h.rooms.Broadcast(m.Room(), m.Render(), conn)
	}

	h.metrics.Delivered.Add(float64(res.Delivered))
	h.metrics.Dropped.Add(float64(len(res.Dropped)))
}
