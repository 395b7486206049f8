// SPDX-License-Identifier: MPL-2.0

// Package remote serves an interactive shell session to SSH clients using
// the Wish library. Each accepted session runs its own shell loop over the
// session's terminal streams; the SSH plumbing here never touches command
// semantics.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
)

const defaultShutdownTimeout = 10 * time.Second

type (
	// SessionFunc runs one shell session over the given terminal stream and
	// returns when the session's loop terminates. The context is canceled
	// when the client disconnects.
	SessionFunc func(ctx context.Context, rw io.ReadWriter) error

	// Config holds the server's immutable configuration.
	Config struct {
		// Addr is the listen address, e.g. "127.0.0.1:2222".
		Addr string
		// HostKeyPath is the server's host key; it is created on first use.
		HostKeyPath string
		// ShutdownTimeout bounds the graceful shutdown after the serve
		// context is canceled. Zero selects a default.
		ShutdownTimeout time.Duration
		// Logger receives session lifecycle logs. Nil discards them.
		Logger *log.Logger
	}

	// Server accepts SSH sessions and hands each one to the session func.
	Server struct {
		cfg    Config
		srv    *ssh.Server
		logger *log.Logger
	}
)

// NewServer builds the Wish server around the session func. Sessions without
// an active terminal are rejected, the shell is line-oriented.
func NewServer(cfg Config, run SessionFunc) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	s := &Server{cfg: cfg, logger: logger}

	srv, err := wish.NewServer(
		wish.WithAddress(cfg.Addr),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithMiddleware(
			s.sessionMiddleware(run),
			activeterm.Middleware(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating SSH server: %w", err)
	}
	s.srv = srv
	return s, nil
}

func (s *Server) sessionMiddleware(run SessionFunc) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			s.logger.Info("session started", "user", sess.User(), "remote", sess.RemoteAddr())
			if err := run(sess.Context(), sess); err != nil {
				s.logger.Error("session ended with error", "user", sess.User(), "err", err)
				_ = sess.Exit(1)
				return
			}
			s.logger.Info("session ended", "user", sess.User())
			next(sess)
		}
	}
}

// ListenAndServe serves until the context is canceled, then shuts down
// gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("SSH server listening", "address", s.cfg.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("shutting down SSH server: %w", err)
	}
	return <-errCh
}
