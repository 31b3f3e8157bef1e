// Package handlers holds the frontend-side session handlers and the text
// renderer shared by the Telnet server and the single-player CLI.
package handlers

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/unicode/norm"

	"github.com/cory-johannsen/grue/internal/frontend/telnet"
	"github.com/cory-johannsen/grue/internal/game/action"
)

// Renderer formats engine output for a terminal.
type Renderer struct {
	// Width is the wrap column; 0 disables wrapping.
	Width int
	// Color enables ANSI styling.
	Color bool
}

// Room formats a room description: the title line is highlighted when the
// room is lit and the exits line is set apart.
func (r Renderer) Room(desc string) string {
	return r.wrap(r.styleRoom(desc))
}

// Result formats a command outcome followed by its notifications.
//
// Postcondition: Returns the wrapped text with no trailing newline.
func (r Renderer) Result(res action.Result) string {
	msg := res.Message
	switch {
	case res.Fault:
		msg = r.paint(telnet.Fault, msg)
	case res.RoomChanged:
		msg = r.styleRoom(msg)
	case !res.Success:
		msg = r.paint(telnet.Refusal, msg)
	}

	parts := make([]string, 0, len(res.Notifications)+1)
	if msg != "" {
		parts = append(parts, msg)
	}
	for _, n := range res.Notifications {
		parts = append(parts, r.paint(telnet.Notification, n))
	}
	return r.wrap(strings.Join(parts, "\n"))
}

// Notice formats out-of-game text such as banners and hints.
func (r Renderer) Notice(text string) string {
	return r.wrap(r.paint(telnet.Notice, text))
}

func (r Renderer) styleRoom(desc string) string {
	lines := strings.Split(desc, "\n")
	if len(lines) > 1 {
		lines[0] = r.paint(telnet.RoomTitle, lines[0])
	}
	for i, line := range lines {
		if strings.HasPrefix(line, "Exits:") {
			lines[i] = r.paint(telnet.ExitList, line)
		}
	}
	return strings.Join(lines, "\n")
}

func (r Renderer) paint(style telnet.Style, text string) string {
	if !r.Color {
		return text
	}
	return style.Paint(text)
}

func (r Renderer) wrap(text string) string {
	if r.Width <= 0 {
		return text
	}
	return wordwrap.String(text, r.Width)
}

// NormalizeInput folds compatibility characters, such as full-width letters
// from East Asian input methods, to their plain forms and trims the line.
func NormalizeInput(line string) string {
	return strings.TrimSpace(norm.NFKC.String(line))
}
