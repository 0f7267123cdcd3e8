package lockclean

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/boshu2/claude-hooks/internal/execx"
)

// ProcessLister answers whether any process with the given name is running.
type ProcessLister interface {
	Running(ctx context.Context, name string) (bool, error)
}

// ProcTable scans a procfs mount for processes whose comm matches, falling
// back to pgrep when the mount is missing.
type ProcTable struct {
	// Root is the procfs mount. Default: /proc
	Root string

	// Self is excluded from matches. Default: os.Getpid()
	Self int

	Runner execx.Runner
}

// NewProcTable returns a ProcTable for the running system.
func NewProcTable() *ProcTable {
	return &ProcTable{Root: "/proc", Self: os.Getpid(), Runner: execx.Exec{}}
}

// Running implements ProcessLister.
func (p *ProcTable) Running(ctx context.Context, name string) (bool, error) {
	root := p.Root
	if root == "" {
		root = "/proc"
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return p.pgrep(ctx, name)
	}

	scanned := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || !e.IsDir() {
			continue
		}
		scanned++
		if pid == p.Self {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, e.Name(), "comm"))
		if err != nil {
			// Process exited between ReadDir and ReadFile.
			continue
		}
		if strings.TrimSpace(string(data)) == name {
			return true, nil
		}
	}
	if scanned == 0 {
		return p.pgrep(ctx, name)
	}
	return false, nil
}

// pgrep exits 1 when nothing matches, which is not an error here.
func (p *ProcTable) pgrep(ctx context.Context, name string) (bool, error) {
	runner := p.Runner
	if runner == nil {
		runner = execx.Exec{}
	}
	out, err := runner.Run(ctx, "", "pgrep", "-x", name)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}
