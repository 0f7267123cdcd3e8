// Package execx runs external commands with a deadline, the way every hook
// talks to its collaborators (task tracker, process table, research agent).
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrNotFound is returned when the program is not on PATH.
var ErrNotFound = errors.New("command not found")

// Runner executes a program and returns its trimmed stdout.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (string, error)
}

// Exec is the os/exec Runner. A zero Timeout means only ctx bounds the call.
type Exec struct {
	Timeout time.Duration
}

// Run implements Runner.
func (e Exec) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	if _, err := exec.LookPath(name); err != nil {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	ctx, cancel := withTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %w", name, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return strings.TrimSpace(string(out)), fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return strings.TrimSpace(string(out)), fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Available reports whether name resolves on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
