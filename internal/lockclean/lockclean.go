// Package lockclean removes a stale version-control lock file before a
// command runs, but only when no process of the controlling program is
// alive. It is a best-effort convenience and never blocks the command.
package lockclean

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/boshu2/claude-hooks/internal/hookio"
	"github.com/boshu2/claude-hooks/internal/logging"
)

// Outcome describes what Clean did.
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped" // event is not a command of Program
	OutcomeNoLock  Outcome = "no-lock"
	OutcomeBusy    Outcome = "busy" // a live process may own the lock
	OutcomeRemoved Outcome = "removed"
)

// Cleaner removes LockFile when Program is not running.
type Cleaner struct {
	// Program is the process name guarding the lock (e.g. "git").
	Program string

	// LockFile is resolved against the command's working directory.
	LockFile string

	Procs  ProcessLister
	Logger *zap.Logger
}

// Result reports the outcome and the lock path considered.
type Result struct {
	Outcome Outcome
	Path    string
}

// Clean inspects ev and removes the lock if it is stale. fallbackCwd is used
// when the event carries no cwd. The error is informational; callers exit
// successfully regardless.
func (c *Cleaner) Clean(ctx context.Context, ev hookio.Event, fallbackCwd string) (Result, error) {
	log := logging.OrNop(c.Logger)

	run, ok := ev.(hookio.RunEvent)
	if !ok {
		return Result{Outcome: OutcomeSkipped}, nil
	}

	cwd := ev.Meta().Cwd
	if cwd == "" {
		cwd = fallbackCwd
	}
	dir, rest := hookio.SplitCd(run.Command, cwd)
	if hookio.ProgramName(rest) != c.Program {
		return Result{Outcome: OutcomeSkipped}, nil
	}

	lockPath := c.LockFile
	if !filepath.IsAbs(lockPath) {
		lockPath = filepath.Join(dir, lockPath)
	}
	res := Result{Path: lockPath}

	info, err := os.Lstat(lockPath)
	if err != nil {
		res.Outcome = OutcomeNoLock
		if errors.Is(err, os.ErrNotExist) {
			return res, nil
		}
		return res, fmt.Errorf("stat lock: %w", err)
	}
	if info.IsDir() {
		res.Outcome = OutcomeNoLock
		return res, nil
	}

	alive, err := c.Procs.Running(ctx, c.Program)
	if err != nil {
		// Unsure means alive: never delete a lock that might be held.
		res.Outcome = OutcomeBusy
		return res, fmt.Errorf("check %s processes: %w", c.Program, err)
	}
	if alive {
		log.Debug("lock held by live process", zap.String("program", c.Program), zap.String("lock", lockPath))
		res.Outcome = OutcomeBusy
		return res, nil
	}

	if err := os.Remove(lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		res.Outcome = OutcomeBusy
		return res, fmt.Errorf("remove lock: %w", err)
	}
	log.Info("removed stale lock", zap.String("lock", lockPath))
	res.Outcome = OutcomeRemoved
	return res, nil
}
