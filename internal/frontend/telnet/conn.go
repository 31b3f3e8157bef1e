package telnet

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Telnet command bytes (RFC 854) recognised on input.
const (
	cmdSE   byte = 240
	cmdSB   byte = 250
	cmdWILL byte = 251
	cmdWONT byte = 252
	cmdDO   byte = 253
	cmdDONT byte = 254
	cmdIAC  byte = 255

	optSuppressGoAhead byte = 3
)

const (
	// DefaultPrompt is written before each command when none is configured.
	DefaultPrompt = "> "
	// maxCommandLen bounds one command line in bytes; input past it is dropped.
	maxCommandLen = 512
)

// ErrSessionAttached is returned by Bind when another connection is already
// playing the game session.
var ErrSessionAttached = errors.New("game session is attached to another connection")

// ErrInterrupted is returned by reads once the connection is interrupted.
var ErrInterrupted = errors.New("connection interrupted")

// Conn is one player's Telnet connection. It strips protocol negotiation
// and line-editing keys from input and remembers the game session being
// played over it.
type Conn struct {
	raw      net.Conn
	in       *bufio.Reader
	dec      decoder
	wmu      sync.Mutex
	smu      sync.Mutex
	attached *registry

	readTimeout  time.Duration
	writeTimeout time.Duration
	prompt       string
	session      string
	interrupted  bool
}

// NewConn wraps a raw TCP connection.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: The Conn is bound to no session and prompts with DefaultPrompt.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		in:           bufio.NewReader(raw),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		prompt:       DefaultPrompt,
	}
}

// SetPrompt changes the command prompt; an empty prompt restores DefaultPrompt.
func (c *Conn) SetPrompt(prompt string) {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	c.prompt = prompt
}

// Negotiate offers to suppress go-ahead. Echo stays with the client.
func (c *Conn) Negotiate() error {
	return c.write([]byte{cmdIAC, cmdWILL, optSuppressGoAhead})
}

// Bind attaches the connection to a game session, releasing any session it
// was playing before.
//
// Postcondition: On ErrSessionAttached the previous binding is kept.
func (c *Conn) Bind(id string) error {
	c.smu.Lock()
	defer c.smu.Unlock()
	if id == c.session {
		return nil
	}
	if c.attached != nil && !c.attached.claim(id, c) {
		return fmt.Errorf("%w: %s", ErrSessionAttached, id)
	}
	c.unbindLocked()
	c.session = id
	return nil
}

// SessionID returns the bound game session id, or "" before Bind.
func (c *Conn) SessionID() string {
	c.smu.Lock()
	defer c.smu.Unlock()
	return c.session
}

func (c *Conn) unbindLocked() {
	if c.attached != nil && c.session != "" {
		c.attached.release(c.session, c)
	}
	c.session = ""
}

// ReadCommand prompts with the connection's prompt and reads one command.
func (c *Conn) ReadCommand() (string, error) {
	return c.Ask(c.prompt)
}

// Ask writes prompt without a line ending and reads the reply.
//
// Postcondition: The reply carries no line ending, Telnet commands or
// control characters other than tab, and is valid UTF-8.
func (c *Conn) Ask(prompt string) (string, error) {
	if err := c.write([]byte(prompt)); err != nil {
		return "", err
	}
	return c.readLine()
}

// Interrupt unblocks a pending read and fails every later one with
// ErrInterrupted. Writes still go through.
func (c *Conn) Interrupt() {
	c.smu.Lock()
	defer c.smu.Unlock()
	c.interrupted = true
	_ = c.raw.SetReadDeadline(time.Now())
}

func (c *Conn) readLine() (string, error) {
	c.smu.Lock()
	if c.interrupted {
		c.smu.Unlock()
		return "", ErrInterrupted
	}
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	c.smu.Unlock()

	line := make([]byte, 0, 64)
	for {
		b, err := c.in.ReadByte()
		if err != nil {
			return strings.ToValidUTF8(string(line), ""), err
		}
		ch, ok := c.dec.feed(b)
		if !ok {
			continue
		}
		switch {
		case ch == '\r' || ch == '\n':
			return strings.ToValidUTF8(string(line), ""), nil
		case ch == '\b' || ch == 0x7f:
			if len(line) > 0 {
				_, n := utf8.DecodeLastRune(line)
				line = line[:len(line)-n]
			}
		case ch < 0x20 && ch != '\t':
			// other control characters are dropped
		case len(line) < maxCommandLen:
			line = append(line, ch)
		}
	}
}

// Send writes text, translating each \n into the \r\n Telnet clients
// expect, and terminates the last line.
func (c *Conn) Send(text string) error {
	text = strings.ReplaceAll(strings.TrimRight(text, "\n"), "\n", "\r\n")
	return c.write([]byte(text + "\r\n"))
}

func (c *Conn) write(p []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(p)
	return err
}

// Close releases the bound session and closes the TCP connection.
func (c *Conn) Close() error {
	c.smu.Lock()
	c.unbindLocked()
	c.smu.Unlock()
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the player.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

type decodeState int

const (
	stateData decodeState = iota
	stateCommand
	stateOption
	stateSub
	stateSubCommand
	stateLineEnd
)

// decoder separates player data from Telnet commands one byte at a time.
// A line ending of CR LF or CR NUL yields a single '\r'.
type decoder struct {
	state decodeState
}

// feed consumes one input byte and reports the data byte it yields, if any.
func (d *decoder) feed(b byte) (byte, bool) {
	switch d.state {
	case stateCommand:
		switch b {
		case cmdWILL, cmdWONT, cmdDO, cmdDONT:
			d.state = stateOption
		case cmdSB:
			d.state = stateSub
		default:
			// Escaped 0xFF and bare commands yield nothing.
			d.state = stateData
		}
		return 0, false
	case stateOption:
		d.state = stateData
		return 0, false
	case stateSub:
		if b == cmdIAC {
			d.state = stateSubCommand
		}
		return 0, false
	case stateSubCommand:
		if b == cmdSE {
			d.state = stateData
		} else {
			d.state = stateSub
		}
		return 0, false
	case stateLineEnd:
		d.state = stateData
		if b == '\n' || b == 0 {
			return 0, false
		}
	}

	switch b {
	case cmdIAC:
		d.state = stateCommand
		return 0, false
	case '\r':
		d.state = stateLineEnd
	}
	return b, true
}
