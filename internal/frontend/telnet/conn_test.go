package telnet

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewConn(server, time.Second, time.Second), client
}

// typeInto writes raw input from the player's side and closes it.
func typeInto(client net.Conn, input []byte) {
	go func() {
		_, _ = client.Write(input)
		client.Close()
	}()
}

// readAll decodes input the way a Conn does, line endings included.
func readAll(input []byte) []byte {
	var d decoder
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if ch, ok := d.feed(b); ok {
			out = append(out, ch)
		}
	}
	return out
}

func TestConn_SendUsesCRLF(t *testing.T) {
	conn, client := pipeConn(t)
	go func() { _ = conn.Send("West of House\nExits: north.\n") }()

	want := "West of House\r\nExits: north.\r\n"
	buf := make([]byte, len(want))
	_, err := io.ReadFull(client, buf)
	require.NoError(t, err)
	assert.Equal(t, want, string(buf))
}

func TestConn_NegotiateOffersSuppressGoAhead(t *testing.T) {
	conn, client := pipeConn(t)
	go func() { _ = conn.Negotiate() }()
	buf := make([]byte, 3)
	_, err := io.ReadFull(client, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{cmdIAC, cmdWILL, optSuppressGoAhead}, buf)
}

func TestConn_ReadCommandStripsNegotiation(t *testing.T) {
	conn, client := pipeConn(t)
	conn.SetPrompt("What now? ")
	go func() {
		prompt := make([]byte, len("What now? "))
		_, _ = io.ReadFull(client, prompt)
		_, _ = client.Write([]byte{cmdIAC, cmdDO, optSuppressGoAhead})
		_, _ = client.Write([]byte{cmdIAC, cmdSB, 24, 0, 'x', 't', 'e', 'r', 'm', cmdIAC, cmdSE})
		_, _ = client.Write([]byte("take lamp\r\n"))
	}()
	line, err := conn.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, "take lamp", line)
}

func TestConn_CRNULEndsOneLine(t *testing.T) {
	conn, client := pipeConn(t)
	typeInto(client, []byte("north\r\x00south\r\n"))

	first, err := conn.readLine()
	require.NoError(t, err)
	second, err := conn.readLine()
	require.NoError(t, err)
	assert.Equal(t, []string{"north", "south"}, []string{first, second})
}

func TestConn_BackspaceEditsLine(t *testing.T) {
	conn, client := pipeConn(t)
	typeInto(client, []byte("taek\b\bke lamp\x7f\x7f\x7f\x7fsack\r\n"))
	line, err := conn.readLine()
	require.NoError(t, err)
	assert.Equal(t, "take sack", line)
}

func TestConn_BackspaceRemovesWholeRune(t *testing.T) {
	conn, client := pipeConn(t)
	typeInto(client, []byte("café\b\r\n"))
	line, err := conn.readLine()
	require.NoError(t, err)
	assert.Equal(t, "caf", line)
}

func TestConn_LongCommandIsTruncated(t *testing.T) {
	conn, client := pipeConn(t)
	long := make([]byte, maxCommandLen+100)
	for i := range long {
		long[i] = 'a'
	}
	typeInto(client, append(long, '\n'))
	line, err := conn.readLine()
	require.NoError(t, err)
	assert.Len(t, line, maxCommandLen)
}

func TestConn_InterruptFailsReads(t *testing.T) {
	conn, _ := pipeConn(t)
	conn.Interrupt()
	_, err := conn.readLine()
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestConn_BindWithoutRegistry(t *testing.T) {
	conn, _ := pipeConn(t)
	assert.Empty(t, conn.SessionID())
	require.NoError(t, conn.Bind("a"))
	require.NoError(t, conn.Bind("b"))
	assert.Equal(t, "b", conn.SessionID())
}

func TestConn_BindConflict(t *testing.T) {
	var reg registry
	first, _ := pipeConn(t)
	second, _ := pipeConn(t)
	first.attached, second.attached = &reg, &reg

	require.NoError(t, first.Bind("zork"))
	require.NoError(t, second.Bind("dungeon"))
	assert.ErrorIs(t, second.Bind("zork"), ErrSessionAttached)
	assert.Equal(t, "dungeon", second.SessionID(), "a refused bind keeps the old session")

	require.NoError(t, first.Close())
	require.NoError(t, second.Bind("zork"))
	assert.Equal(t, []string{"zork"}, reg.ids())
}

func TestDecoder_EscapedIACIsDropped(t *testing.T) {
	assert.Equal(t, []byte("ab"), readAll([]byte{'a', cmdIAC, cmdIAC, 'b'}))
}

func TestDecoder_LineEndings(t *testing.T) {
	assert.Equal(t, []byte("a\rb\rc\n"), readAll([]byte("a\r\nb\r\x00c\n")))
}

// Property: input without IAC or CR passes through unchanged.
func TestPropertyDecoder_PlainInputPassesThrough(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOfN(rapid.ByteRange(0, 254), 0, 200).Draw(t, "input")
		for i, b := range input {
			if b == '\r' {
				input[i] = ' '
			}
		}
		assert.Equal(t, input, readAll(input))
	})
}

// Property: decoded input never contains an IAC byte and is never longer
// than what was typed.
func TestPropertyDecoder_NoCommandsSurvive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOfN(rapid.Byte(), 0, 200).Draw(t, "input")
		out := readAll(input)
		assert.NotContains(t, out, cmdIAC)
		assert.LessOrEqual(t, len(out), len(input))
	})
}
