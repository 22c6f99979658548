// Package process runs external tools as blocking child processes.
//
// Child output is forwarded to stderr unless the caller supplies its own
// writers: stdout of this program is reserved for the final artifact path.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Command describes a single child process invocation.
type Command struct {
	Name   string
	Args   []string
	Env    []string // added on top of the inherited environment
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// ExitError reports a child that ran but exited non-zero.
type ExitError struct {
	Name string
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Run executes cmd and waits for it. A non-zero exit is returned as
// *ExitError; failures to start are returned as-is.
func Run(ctx context.Context, logger *slog.Logger, cmd Command) error {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return errors.New("process: empty command name")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := exec.CommandContext(ctx, name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)
	c.Stdout = cmd.Stdout
	if c.Stdout == nil {
		c.Stdout = os.Stderr
	}
	c.Stderr = cmd.Stderr
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	logger.Debug("running command", "command", name, "args", cmd.Args)
	err := c.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Name: name, Code: exitErr.ExitCode(), Err: err}
	}
	return fmt.Errorf("run %s: %w", name, err)
}

// SyncWriter serialises writes to w. Use it when one writer is reached
// through both Stdout and Stderr under different values, since the child's
// streams are then copied on separate goroutines.
func SyncWriter(w io.Writer) io.Writer {
	return &syncWriter{w: w}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
