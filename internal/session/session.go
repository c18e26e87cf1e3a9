// Package session runs a command under a pty and feeds everything it
// prints into a boundary terminal.
package session

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/creack/pty"
	"go.uber.org/zap"
)

// Sink is the write side of a boundary terminal. Local handles and bound
// remote terminals both expose this shape.
type Sink interface {
	Write(p []byte) error
	Resize(cols, rows int) error
}

// Config describes the command to run and its initial geometry.
type Config struct {
	// Command to run. Empty falls back to $SHELL, then /bin/sh.
	Command string
	Args    []string
	Dir     string

	Cols int
	Rows int
}

// Session is one running command attached to a terminal through a pty.
type Session struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	sink   Sink
	logger *zap.Logger

	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}
	waitErr   error
}

// Start spawns the command on a fresh pty sized to the config and begins
// pumping its output into the sink.
func Start(cfg Config, sink Sink, logger *zap.Logger) (*Session, error) {
	command := cfg.Command
	if command == "" {
		command = os.Getenv("SHELL")
	}
	if command == "" {
		command = "/bin/sh"
	}

	cmd := exec.Command(command, cfg.Args...)
	cmd.Dir = cfg.Dir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(cfg.Rows),
		Cols: uint16(cfg.Cols),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s on a pty: %w", command, err)
	}

	s := &Session{
		cmd:    cmd,
		ptmx:   ptmx,
		sink:   sink,
		logger: logger.With(zap.String("component", "session")),
		done:   make(chan struct{}),
	}

	s.logger.Info("Session started",
		zap.String("command", command),
		zap.Int("pid", cmd.Process.Pid),
		zap.Int("cols", cfg.Cols),
		zap.Int("rows", cfg.Rows))

	go s.pump()

	return s, nil
}

// pump copies pty output into the sink until the pty reports an error,
// which on Linux is how a child exit surfaces, then reaps the child.
func (s *Session) pump() {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			if werr := s.sink.Write(buf[:n]); werr != nil {
				s.logger.Warn("Terminal rejected session output", zap.Error(werr))
			}
		}
		if err != nil {
			break
		}
	}

	s.waitErr = s.cmd.Wait()
	s.logger.Info("Session ended", zap.Int("pid", s.cmd.Process.Pid))
	close(s.done)
}

// Write sends input bytes to the child as if typed at its terminal.
func (s *Session) Write(p []byte) (int, error) {
	return s.ptmx.Write(p)
}

// Resize changes the pty window size and propagates the new geometry to
// the terminal.
func (s *Session) Resize(cols, rows int) error {
	if err := pty.Setsize(s.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	}); err != nil {
		return fmt.Errorf("failed to resize pty: %w", err)
	}
	return s.sink.Resize(cols, rows)
}

// Done is closed once the child has exited and been reaped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the child exits. It reports the child's exit error,
// except that a nonzero exit caused by Close tearing the pty down is not
// an error.
func (s *Session) Wait() error {
	<-s.done

	var exitErr *exec.ExitError
	if s.closed.Load() && errors.As(s.waitErr, &exitErr) {
		return nil
	}
	return s.waitErr
}

// Close hangs up the pty. The child receives SIGHUP, the pump loop drains
// and reaps it, and Done closes. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if err := s.ptmx.Close(); err != nil {
			s.logger.Warn("Failed to close pty", zap.Error(err))
		}
	})
	return nil
}
