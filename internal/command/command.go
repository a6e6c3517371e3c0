// Package command runs external processes for the build orchestrator.
//
// Every invocation names its working directory explicitly; the runner never
// changes the process-wide current directory.
package command

import (
	"context"
	"fmt"
	"strings"
)

// Invocation describes one external process.
type Invocation struct {
	Name string
	Args []string
	Dir  string   // working directory; empty means the caller's
	Env  []string // KEY=VALUE pairs added to the inherited environment
}

// String formats the invocation the way a user would type it.
func (i Invocation) String() string {
	parts := make([]string, 0, len(i.Args)+1)
	parts = append(parts, quote(i.Name))
	for _, a := range i.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// Runner spawns external processes.
type Runner interface {
	// Run captures stdout and stderr and returns stdout.
	Run(ctx context.Context, inv Invocation) (string, error)
	// RunStreamed connects the process to the runner's output streams.
	RunStreamed(ctx context.Context, inv Invocation) error
}

// Error describes a process that failed to start or exited unsuccessfully.
type Error struct {
	Invocation string
	Dir        string
	ExitCode   int    // -1 when the process never started or was killed
	Stderr     string // captured stderr, or its tail in streamed mode
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, "`%s` exited with status %d", e.Invocation, e.ExitCode)
	} else {
		fmt.Fprintf(&b, "`%s` failed: %v", e.Invocation, e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString("\nstderr:\n")
		b.WriteString(stderr)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }
