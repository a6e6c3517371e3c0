package command

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/logfields"
)

// DefaultTailSize bounds how much streamed stderr is kept for diagnostics.
const DefaultTailSize = 8 << 10

// ExecRunner runs processes with os/exec.
type ExecRunner struct {
	Stdout   io.Writer // streamed mode destination; os.Stdout when nil
	Stderr   io.Writer // streamed mode destination; os.Stderr when nil
	TailSize int       // streamed stderr bytes kept for the error; DefaultTailSize when zero
}

// NewExecRunner returns a runner streaming to the process's own stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr, TailSize: DefaultTailSize}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (string, error) {
	cmd := r.command(ctx, inv)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Running command", logfields.Command(inv.String()), logfields.Dir(inv.Dir))
	if err := cmd.Start(); err != nil {
		return "", spawnFailure(inv, err)
	}
	if err := cmd.Wait(); err != nil {
		return stdout.String(), exitFailure(inv, err, stderr.String())
	}
	return stdout.String(), nil
}

// RunStreamed implements Runner. Stderr is copied into a bounded tail buffer
// so a failure still carries the process's last diagnostics.
func (r *ExecRunner) RunStreamed(ctx context.Context, inv Invocation) error {
	cmd := r.command(ctx, inv)
	tail := newTailBuffer(r.tailSize())
	cmd.Stdout = orDefault(r.Stdout, os.Stdout)
	cmd.Stderr = io.MultiWriter(orDefault(r.Stderr, os.Stderr), tail)

	slog.Info("Running command", logfields.Command(inv.String()), logfields.Dir(inv.Dir))
	if err := cmd.Start(); err != nil {
		return spawnFailure(inv, err)
	}
	if err := cmd.Wait(); err != nil {
		return exitFailure(inv, err, tail.String())
	}
	return nil
}

func (r *ExecRunner) command(ctx context.Context, inv Invocation) *exec.Cmd {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}
	return cmd
}

func spawnFailure(inv Invocation, err error) error {
	cmdErr := &Error{Invocation: inv.String(), Dir: inv.Dir, ExitCode: -1, Err: err}
	return errors.SpawnError("failed to start "+inv.Name).
		WithCause(cmdErr).
		WithContext("command", cmdErr.Invocation).
		WithContext("dir", inv.Dir).
		Build()
}

func exitFailure(inv Invocation, err error, stderr string) error {
	cmdErr := &Error{Invocation: inv.String(), Dir: inv.Dir, ExitCode: -1, Stderr: stderr, Err: err}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	return errors.CommandError("command failed").
		WithCause(cmdErr).
		WithContext("command", cmdErr.Invocation).
		WithContext("exit_code", cmdErr.ExitCode).
		Build()
}

func (r *ExecRunner) tailSize() int {
	if r.TailSize > 0 {
		return r.TailSize
	}
	return DefaultTailSize
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{max: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
