package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	flags "github.com/jessevdk/go-flags"

	relaychat "github.com/shazow/relay-chat"
	"github.com/shazow/relay-chat/chat"
	"github.com/shazow/relay-chat/log"
	"github.com/shazow/relay-chat/tcpd"

	_ "net/http/pprof"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options shared by every command
type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version bool   `long:"version" description:"Print version and exit."`
}

type serverCommand struct {
	Bind         string        `long:"bind" env:"RELAY_BIND" description:"Host and port to listen on." default:"127.0.0.1:5000"`
	Metrics      string        `long:"metrics" env:"RELAY_METRICS" description:"Serve Prometheus metrics on this host and port."`
	MaxFrame     int           `long:"max-frame" env:"RELAY_MAX_FRAME" description:"Largest accepted frame, in bytes." default:"4096"`
	WriteTimeout time.Duration `long:"write-timeout" env:"RELAY_WRITE_TIMEOUT" description:"Drop members whose writes stall for this long." default:"10s"`
	RateLimit    int           `long:"rate-limit" env:"RELAY_RATE_LIMIT" description:"Frames accepted per connection each rate period, 0 to disable." default:"0"`
	RatePeriod   time.Duration `long:"rate-period" env:"RELAY_RATE_PERIOD" description:"Window for --rate-limit." default:"1s"`
	ReadLimit    bool          `long:"read-limit" description:"Throttle connections that send more bytes than a human could type."`
	Pprof        int           `long:"pprof" description:"Enable pprof http server for profiling."`
}

type clientCommand struct {
	Addr     string `long:"addr" env:"RELAY_ADDR" description:"Host and port of the server." default:"127.0.0.1:5000"`
	Username string `short:"u" long:"username" env:"RELAY_USERNAME" description:"Name to chat as, prompted for if empty."`
	Room     string `short:"r" long:"room" env:"RELAY_ROOM" description:"Room to join, prompted for if empty."`
}

var options Options

func fail(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

func main() {
	parser := flags.NewParser(&options, flags.Default)
	parser.SubcommandsOptional = true
	parser.AddCommand("server", "Run the relay server", "Accept connections and relay messages between room members until interrupted.", &serverCommand{})
	parser.AddCommand("client", "Run a console client", "Connect to a relay server, join a room and chat from the terminal.", &clientCommand{})

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	if options.Version {
		fmt.Println(Version)
		return
	}
	if parser.Active == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
}

func (c *serverCommand) Execute(args []string) error {
	log.Init(len(options.Verbose))
	logger := log.Logger

	if c.Pprof != 0 {
		go func() {
			fmt.Println(http.ListenAndServe(fmt.Sprintf("localhost:%d", c.Pprof), nil))
		}()
	}

	s, err := tcpd.Listen(c.Bind)
	if err != nil {
		fail(4, "Failed to listen on socket: %v\n", err)
	}
	s.WriteTimeout = c.WriteTimeout
	if c.ReadLimit {
		s.RateLimit = tcpd.NewInputLimiter
	}

	fmt.Printf("Listening for connections on %v\n", s.Addr().String())

	host := relaychat.NewHost(s, chat.NewRegistry(), relaychat.HostConfig{
		MaxFrame:    c.MaxFrame,
		MessageRate: c.RateLimit,
		RatePeriod:  c.RatePeriod,
	})

	if c.Metrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", host.Metrics().Handler())
		go func() {
			logger.Errorf("Metrics server stopped: %v", http.ListenAndServe(c.Metrics, mux))
		}()
		logger.Infof("Serving metrics on http://%s/metrics", c.Metrics)
	}

	done := make(chan struct{})
	go func() {
		host.Serve()
		close(done)
	}()

	// Construct interrupt handler
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	<-sig // Wait for ^C signal
	fmt.Fprintln(os.Stderr, "Interrupt signal detected, shutting down.")
	host.Close()
	<-done
	return nil
}
