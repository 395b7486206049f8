// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Addr:        "127.0.0.1:0",
		HostKeyPath: filepath.Join(t.TempDir(), "host_key"),
	}
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	srv, err := NewServer(testConfig(t), func(ctx context.Context, rw io.ReadWriter) error {
		return nil
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv == nil {
		t.Fatal("NewServer() returned a nil server")
	}
}

func TestNewServer_DefaultShutdownTimeout(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	srv, err := NewServer(cfg, func(ctx context.Context, rw io.ReadWriter) error { return nil })
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.cfg.ShutdownTimeout != defaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want %v", srv.cfg.ShutdownTimeout, defaultShutdownTimeout)
	}
}

func TestServer_GracefulShutdown(t *testing.T) {
	t.Parallel()

	srv, err := NewServer(testConfig(t), func(ctx context.Context, rw io.ReadWriter) error {
		return nil
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	// Give the listener a moment to come up, then cancel the serve context.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() after cancel error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe() did not return after context cancellation")
	}
}

// stubSession provides just the surface the session middleware touches; any
// other method of the embedded interface panics if reached.
type stubSession struct {
	ssh.Session
	exitCode int
	exited   bool
}

func (s *stubSession) User() string         { return "tester" }
func (s *stubSession) RemoteAddr() net.Addr { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (s *stubSession) Context() ssh.Context { return nil }

func (s *stubSession) Exit(code int) error {
	s.exitCode = code
	s.exited = true
	return nil
}

func TestSessionMiddleware_ErrorExitsNonZero(t *testing.T) {
	t.Parallel()

	s := &Server{logger: log.New(io.Discard)}
	mw := s.sessionMiddleware(func(ctx context.Context, rw io.ReadWriter) error {
		return fmt.Errorf("session blew up")
	})

	nextCalled := false
	sess := &stubSession{}
	mw(func(ssh.Session) { nextCalled = true })(sess)

	if !sess.exited || sess.exitCode != 1 {
		t.Errorf("session exit = (%v, %d), want a non-zero exit", sess.exited, sess.exitCode)
	}
	if nextCalled {
		t.Error("next handler ran after a session error")
	}
}

func TestSessionMiddleware_Success(t *testing.T) {
	t.Parallel()

	s := &Server{logger: log.New(io.Discard)}
	mw := s.sessionMiddleware(func(ctx context.Context, rw io.ReadWriter) error {
		return nil
	})

	nextCalled := false
	sess := &stubSession{}
	mw(func(ssh.Session) { nextCalled = true })(sess)

	if sess.exited {
		t.Errorf("session exited with %d on success, want no forced exit", sess.exitCode)
	}
	if !nextCalled {
		t.Error("next handler did not run after a clean session")
	}
}
