package testutil

import (
	"bufio"
	"net"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/grue/internal/frontend/telnet"
)

// ReplyTimeout bounds how long a Player waits for expected output.
const ReplyTimeout = 2 * time.Second

var gameIDPattern = regexp.MustCompile(`Your game id is ([0-9a-f-]{36})`)

// Player drives a game server over Telnet the way a person at a terminal
// would. Output is read with Telnet negotiation and ANSI styling removed.
type Player struct {
	t      *testing.T
	conn   net.Conn
	in     *bufio.Reader
	prompt string
}

// DialPlayer connects a Player to addr.
//
// Precondition: addr must be a listening "host:port".
// Postcondition: The connection is closed when the test ends.
func DialPlayer(t *testing.T, addr string) *Player {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("dialing %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &Player{t: t, conn: conn, in: bufio.NewReader(conn), prompt: telnet.DefaultPrompt}
}

// Expect reads until want appears and returns everything read.
//
// Postcondition: Fails the test when want does not arrive within ReplyTimeout.
func (p *Player) Expect(want string) string {
	p.t.Helper()
	_ = p.conn.SetReadDeadline(time.Now().Add(ReplyTimeout))
	var raw strings.Builder
	for {
		b, err := p.in.ReadByte()
		if err != nil {
			p.t.Fatalf("waiting for %q: got %q: %v", want, telnet.Plain(raw.String()), err)
		}
		if b == 255 {
			// IAC plus command and option byte.
			_, _ = p.in.Discard(2)
			continue
		}
		raw.WriteByte(b)
		if text := telnet.Plain(raw.String()); strings.Contains(text, want) {
			return text
		}
	}
}

// Enter types a line and presses return.
func (p *Player) Enter(line string) {
	p.t.Helper()
	_ = p.conn.SetWriteDeadline(time.Now().Add(ReplyTimeout))
	if _, err := p.conn.Write([]byte(line + "\r\n")); err != nil {
		p.t.Fatalf("entering %q: %v", line, err)
	}
}

// Command enters line and returns the reply up to the next prompt, with
// the prompt and surrounding blank lines trimmed.
func (p *Player) Command(line string) string {
	p.t.Helper()
	p.Enter(line)
	out := p.Expect("\r\n" + p.prompt)
	return strings.TrimSpace(strings.TrimSuffix(out, p.prompt))
}

// StartGame answers the game id question with a blank line and returns the
// new game's id and opening text.
func (p *Player) StartGame() (string, string) {
	p.t.Helper()
	p.Expect("Game id> ")
	p.Enter("")
	out := p.Expect("\r\n" + p.prompt)
	id := GameID(out)
	if id == "" {
		p.t.Fatalf("no game id in %q", out)
	}
	return id, out
}

// ResumeGame answers the game id question with id and returns the reply up
// to the first command prompt.
func (p *Player) ResumeGame(id string) string {
	p.t.Helper()
	p.Expect("Game id> ")
	p.Enter(id)
	return p.Expect("\r\n" + p.prompt)
}

// GameID extracts the game id announced in out, or "".
func GameID(out string) string {
	if m := gameIDPattern.FindStringSubmatch(out); m != nil {
		return m[1]
	}
	return ""
}

// Quit leaves the game and returns the farewell.
func (p *Player) Quit() string {
	p.t.Helper()
	p.Enter("quit")
	return p.Expect("Goodbye.")
}

// Close hangs up.
func (p *Player) Close() {
	p.conn.Close()
}
