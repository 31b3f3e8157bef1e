package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/frontend/telnet"
	"github.com/cory-johannsen/grue/internal/game/session"
	"github.com/cory-johannsen/grue/internal/storage"
)

const welcomeBanner = `
  G R U E
  An interactive fiction.

  Press enter to begin a new game, or type the id of a saved game to resume it.
  Type quit at any time to leave; your game is saved after every command.
`

// GameHandler runs one game session per Telnet connection.
type GameHandler struct {
	sessions *session.Manager
	render   Renderer
	logger   *zap.Logger
}

var _ telnet.SessionHandler = (*GameHandler)(nil)

// NewGameHandler creates a GameHandler.
//
// Precondition: sessions and logger must be non-nil.
func NewGameHandler(sessions *session.Manager, render Renderer, logger *zap.Logger) *GameHandler {
	return &GameHandler{sessions: sessions, render: render, logger: logger}
}

// HandleSession greets the player, starts or resumes a game and runs the
// command loop until the player quits, the connection drops or ctx ends.
func (h *GameHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr().String()

	if err := conn.Send(h.render.Notice(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}
	line, err := conn.Ask("Game id> ")
	if err != nil {
		return fmt.Errorf("reading game id: %w", err)
	}

	intro, err := h.open(ctx, NormalizeInput(line), conn)
	if err != nil {
		return err
	}
	id := conn.SessionID()
	h.logger.Info("game opened", zap.String("remote_addr", addr), zap.String("session", id))
	if err := conn.Send(h.render.Room(intro)); err != nil {
		return fmt.Errorf("writing room: %w", err)
	}

	for {
		if ctx.Err() != nil {
			return h.shutdown(ctx, conn)
		}
		line, err := conn.ReadCommand()
		if err != nil {
			if ctx.Err() != nil {
				return h.shutdown(ctx, conn)
			}
			return fmt.Errorf("reading input: %w", err)
		}
		line = NormalizeInput(line)
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "q":
			_ = conn.Send(h.render.Notice(fmt.Sprintf("Your game is saved as %s. Goodbye.", id)))
			h.logger.Info("player quit",
				zap.String("remote_addr", addr),
				zap.String("session", id),
				zap.Duration("session_duration", time.Since(start)),
			)
			return nil
		case "save":
			_ = conn.Send(h.render.Notice(fmt.Sprintf("Your game is saved after every command. Its id is %s.", id)))
			continue
		}

		res, err := h.sessions.Handle(ctx, id, line)
		if errors.Is(err, session.ErrSessionEnded) {
			_ = conn.Send(h.render.Result(res))
			_ = conn.Send(h.render.Notice("Your game has ended."))
			return nil
		}
		if err != nil {
			h.logger.Error("handling command",
				zap.String("session", id),
				zap.String("input", line),
				zap.Error(err),
			)
			_ = conn.Send(h.render.Notice("Your game could not be saved. Please reconnect and resume it."))
			return fmt.Errorf("handling command: %w", err)
		}
		if err := conn.Send(h.render.Result(res)); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}
}

func (h *GameHandler) shutdown(ctx context.Context, conn *telnet.Conn) error {
	_ = conn.Send("\n" + h.render.Notice(fmt.Sprintf("The server is shutting down. Your game is saved as %s.", conn.SessionID())))
	return ctx.Err()
}

// open binds conn to the session named by id and resumes it. A new game is
// started instead when id is empty, unknown or being played elsewhere.
//
// Postcondition: On success conn is bound to the opened session.
func (h *GameHandler) open(ctx context.Context, id string, conn *telnet.Conn) (string, error) {
	if id != "" {
		intro, err := h.resume(ctx, id, conn)
		if err == nil {
			_ = conn.Send(h.render.Notice("Welcome back."))
			return intro, nil
		}
		switch {
		case errors.Is(err, storage.ErrSessionNotFound):
			_ = conn.Send(h.render.Notice("No saved game has that id. Starting a new game."))
		case errors.Is(err, telnet.ErrSessionAttached):
			_ = conn.Send(h.render.Notice("That game is being played on another connection. Starting a new game."))
		default:
			return "", err
		}
	}
	id, intro, err := h.sessions.Start(ctx)
	if err != nil {
		return "", fmt.Errorf("starting game: %w", err)
	}
	if err := conn.Bind(id); err != nil {
		return "", fmt.Errorf("binding new game: %w", err)
	}
	_ = conn.Send(h.render.Notice(fmt.Sprintf("Your game id is %s.", id)))
	return intro, nil
}

func (h *GameHandler) resume(ctx context.Context, id string, conn *telnet.Conn) (string, error) {
	if err := conn.Bind(id); err != nil {
		return "", err
	}
	intro, err := h.sessions.Resume(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return "", err
		}
		return "", fmt.Errorf("resuming %q: %w", id, err)
	}
	return intro, nil
}
