package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/claude-hooks/internal/lockclean"
)

var lockCleanCmd = &cobra.Command{
	Use:   "lock-clean",
	Short: "PreToolUse hook: remove a stale git index lock",
	Long: `Read a PreToolUse event on stdin. When the command runs git and
.git/index.lock exists with no git process alive, remove the lock.

Never prints to stdout and always exits 0.`,
	Args: cobra.NoArgs,
	RunE: runLockClean,
}

func init() {
	rootCmd.AddCommand(lockCleanCmd)
}

func runLockClean(cmd *cobra.Command, args []string) error {
	cleaner := &lockclean.Cleaner{
		Program:  cfg.LockClean.Program,
		LockFile: cfg.LockClean.LockFile,
		Procs:    lockclean.NewProcTable(),
		Logger:   logger,
	}

	res, err := cleaner.Clean(cmd.Context(), readEvent(cmd), workDir)
	if err != nil {
		logger.Debug("lock clean skipped", zap.String("lock", res.Path), zap.Error(err))
		return nil
	}
	logger.Debug("lock clean", zap.String("outcome", string(res.Outcome)), zap.String("lock", res.Path))
	return nil
}
