package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/config"
)

// SessionHandler plays one game over a connected Conn.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// registry records which connection is playing each game session, so a
// saved game is never driven from two connections at once.
type registry struct {
	mu    sync.Mutex
	owner map[string]*Conn
}

func (r *registry) claim(id string, c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if held, ok := r.owner[id]; ok && held != c {
		return false
	}
	if r.owner == nil {
		r.owner = make(map[string]*Conn)
	}
	r.owner[id] = c
	return true
}

func (r *registry) release(id string, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owner[id] == c {
		delete(r.owner, id)
	}
}

func (r *registry) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.owner))
	for id := range r.owner {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Acceptor listens for players on a TCP port and hands each connection to
// a SessionHandler.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	sessions registry
	wg       sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	conns    map[*Conn]struct{}
	stopped  bool
}

// NewAcceptor creates an acceptor.
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		conns:   make(map[*Conn]struct{}),
	}
}

// ListenAndServe accepts players until Stop is called.
//
// Postcondition: Returns nil after Stop; the listener is closed.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return ln.Close()
	}
	a.listener = ln
	a.mu.Unlock()

	a.logger.Info("telnet acceptor listening",
		zap.String("addr", ln.Addr().String()),
		zap.Duration("startup", time.Since(start)),
	)

	for {
		raw, err := ln.Accept()
		if err != nil {
			if a.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			a.logger.Error("accepting connection", zap.Error(err))
			continue
		}
		conn := a.track(raw)
		if conn == nil {
			raw.Close()
			continue
		}
		go a.serve(conn)
	}
}

// track registers a new connection, or returns nil once stopping.
func (a *Acceptor) track(raw net.Conn) *Conn {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return nil
	}
	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	conn.SetPrompt(a.cfg.Prompt)
	conn.attached = &a.sessions
	a.conns[conn] = struct{}{}
	a.wg.Add(1)
	return conn
}

func (a *Acceptor) serve(conn *Conn) {
	start := time.Now()
	addr := conn.RemoteAddr().String()
	defer func() {
		conn.Close()
		a.mu.Lock()
		delete(a.conns, conn)
		a.mu.Unlock()
		a.wg.Done()
	}()

	a.logger.Info("player connected", zap.String("remote_addr", addr), zap.Int("active", a.Active()))
	if err := conn.Negotiate(); err != nil {
		a.logger.Error("telnet negotiation failed", zap.String("remote_addr", addr), zap.Error(err))
		return
	}

	err := a.handler.HandleSession(a.ctx, conn)
	fields := []zap.Field{
		zap.String("remote_addr", addr),
		zap.String("session", conn.SessionID()),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		a.logger.Debug("player disconnected", append(fields, zap.Error(err))...)
		return
	}
	a.logger.Info("player left", fields...)
}

// Stop closes the listener, cancels every session context, interrupts
// pending reads and waits for the handlers to return. It is safe to call more than once.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.cancel()
	if a.listener != nil {
		a.listener.Close()
		a.listener = nil
	}
	for conn := range a.conns {
		conn.Interrupt()
	}
	a.mu.Unlock()

	a.wg.Wait()
	a.logger.Info("telnet acceptor stopped")
}

// Addr returns the listening address, or "" when not listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Active returns the number of open player connections.
func (a *Acceptor) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.conns)
}

// Playing returns the sorted ids of the game sessions bound to open
// connections.
func (a *Acceptor) Playing() []string {
	return a.sessions.ids()
}
