package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	isatty "github.com/mattn/go-isatty"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/shazow/relay-chat/client"
	"github.com/shazow/relay-chat/log"
)

// console is the line-based presentation layer of the client command. On a
// tty it uses a raw-mode line editor so incoming lines don't clobber what the
// user is typing; otherwise it falls back to plain buffered stdin.
type console struct {
	mu  sync.Mutex
	out io.Writer

	term    *terminal.Terminal
	fd      int
	state   *terminal.State
	scanner *bufio.Scanner
}

func newConsole(in, out *os.File) *console {
	c := &console{out: out}
	if isatty.IsTerminal(in.Fd()) {
		fd := int(in.Fd())
		if state, err := terminal.MakeRaw(fd); err == nil {
			c.fd = fd
			c.state = state
			c.term = terminal.NewTerminal(struct {
				io.Reader
				io.Writer
			}{in, out}, "")
			return c
		}
	}
	c.scanner = bufio.NewScanner(in)
	return c
}

// Prompt shows prompt and reads one line of input.
func (c *console) Prompt(prompt string) (string, error) {
	if c.term != nil {
		c.term.SetPrompt(prompt)
		return c.term.ReadLine()
	}

	c.mu.Lock()
	fmt.Fprint(c.out, prompt)
	c.mu.Unlock()
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.scanner.Text(), nil
}

// Println prints an incoming line above the input prompt.
func (c *console) Println(line string) {
	if c.term != nil {
		c.term.Write([]byte(line + "\n"))
		return
	}
	c.mu.Lock()
	fmt.Fprintln(c.out, line)
	c.mu.Unlock()
}

// Close restores the terminal state.
func (c *console) Close() {
	if c.state != nil {
		terminal.Restore(c.fd, c.state)
		c.state = nil
	}
}

func (c *clientCommand) Execute(args []string) error {
	log.Init(len(options.Verbose))

	con := newConsole(os.Stdin, os.Stdout)
	defer con.Close()

	username, room := c.Username, c.Room
	var err error
	if username == "" {
		username, err = con.Prompt("Username: ")
	}
	if err == nil && room == "" {
		room, err = con.Prompt("Room: ")
	}
	username, room = strings.TrimSpace(username), strings.TrimSpace(room)
	if err != nil || username == "" || room == "" {
		con.Close()
		fail(1, "Username and room name are required.\n")
	}

	session, err := client.Dial(c.Addr, username)
	if err != nil {
		con.Close()
		fail(2, "%v. Make sure the server is running.\n", err)
	}
	defer session.Close()

	if err := session.Join(room); err != nil {
		con.Close()
		fail(3, "Failed to join %s: %v\n", room, err)
	}

	input := make(chan string)
	go func() {
		defer close(input)
		prompt := fmt.Sprintf("[%s] ", room)
		for {
			line, err := con.Prompt(prompt)
			if err != nil {
				return
			}
			input <- line
		}
	}()

	incoming := session.Incoming()
	for {
		select {
		case line, ok := <-incoming:
			if !ok {
				if err := session.Err(); err != nil {
					con.Println(fmt.Sprintf("Connection to server lost: %v", err))
				} else {
					con.Println("Connection to server lost.")
				}
				return nil
			}
			con.Println(line)
		case line, ok := <-input:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				// Silently ignore empty lines.
				continue
			}
			if err := session.Send(room, line); err != nil {
				con.Println(fmt.Sprintf("Failed to send: %v", err))
			}
		}
	}
}
