// Package telnet serves the game over Telnet: the acceptor, the per-player
// connection and the ANSI styles game output is painted with.
package telnet

import "regexp"

// Style is an ANSI SGR sequence that sets one kind of game output apart.
type Style string

const reset = "\033[0m"

// Styles by the kind of text they paint.
const (
	RoomTitle    Style = "\033[1;93m"
	ExitList     Style = "\033[36m"
	Notice       Style = "\033[96m"
	Notification Style = "\033[33m"
	Refusal      Style = "\033[37m"
	Fault        Style = "\033[1;91m"
)

var sgrPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// Paint wraps text in the style and a trailing reset.
//
// Postcondition: Empty text is returned unchanged.
func (s Style) Paint(text string) string {
	if text == "" {
		return text
	}
	return string(s) + text + reset
}

// Plain strips SGR sequences from text, leaving what a player would read.
func Plain(text string) string {
	return sgrPattern.ReplaceAllString(text, "")
}
