package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/game/session"
	"github.com/cory-johannsen/grue/internal/storage"
)

const consoleBanner = `
  G R U E
  An interactive fiction.

  Type quit to leave; your game is saved after every command.
`

// Console plays one game over a line-oriented reader and writer, such as a
// terminal's stdin and stdout.
type Console struct {
	sessions *session.Manager
	render   Renderer
	logger   *zap.Logger
}

// NewConsole creates a Console.
//
// Precondition: sessions and logger must be non-nil.
func NewConsole(sessions *session.Manager, render Renderer, logger *zap.Logger) *Console {
	return &Console{sessions: sessions, render: render, logger: logger}
}

// Play resumes the game named by id, or starts a new one when id is empty,
// and feeds it lines from in until EOF, quit or the end of the game.
//
// Postcondition: Returns the session id played, or an error when the game
// could not be opened or saved.
func (c *Console) Play(ctx context.Context, id string, in io.Reader, out io.Writer) (string, error) {
	var intro string
	var err error
	if id == "" {
		id, intro, err = c.sessions.Start(ctx)
		if err != nil {
			return "", fmt.Errorf("starting game: %w", err)
		}
		c.println(out, c.render.Notice(consoleBanner))
		c.println(out, c.render.Notice(fmt.Sprintf("Your game id is %s.", id)))
	} else {
		intro, err = c.sessions.Resume(ctx, id)
		if errors.Is(err, storage.ErrSessionNotFound) {
			return "", fmt.Errorf("no saved game has id %s", id)
		}
		if err != nil {
			return "", fmt.Errorf("resuming game: %w", err)
		}
		c.println(out, c.render.Notice("Welcome back."))
	}
	c.println(out, c.render.Room(intro))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := NormalizeInput(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "quit", "q":
			c.println(out, c.render.Notice(fmt.Sprintf("Your game is saved as %s. Goodbye.", id)))
			return id, nil
		case "save":
			c.println(out, c.render.Notice(fmt.Sprintf("Your game is saved after every command. Its id is %s.", id)))
			continue
		}

		res, err := c.sessions.Handle(ctx, id, line)
		if errors.Is(err, session.ErrSessionEnded) {
			c.println(out, c.render.Result(res))
			c.println(out, c.render.Notice("Your game has ended."))
			return id, nil
		}
		if err != nil {
			c.logger.Error("handling command", zap.String("session", id), zap.String("input", line), zap.Error(err))
			return id, fmt.Errorf("handling command: %w", err)
		}
		c.println(out, c.render.Result(res))
	}
	fmt.Fprintln(out)
	if err := scanner.Err(); err != nil {
		return id, fmt.Errorf("reading input: %w", err)
	}
	return id, nil
}

func (c *Console) println(out io.Writer, text string) {
	fmt.Fprintln(out, text)
}
