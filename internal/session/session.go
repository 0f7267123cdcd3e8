// Package session builds the context digest printed at session start from
// read-only queries against the task tracker.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boshu2/claude-hooks/internal/execx"
	"github.com/boshu2/claude-hooks/internal/logging"
)

// Tip is printed instead of a digest when the tracker is not usable here.
const Tip = "Tip: run 'bd init' to track work across sessions."

// DefaultReadyLimit caps the ready-work section.
const DefaultReadyLimit = 5

// DefaultTimeout bounds each tracker query.
const DefaultTimeout = 2 * time.Second

// Query is one tracker invocation rendered as a digest section.
type Query struct {
	Title string
	Args  []string

	// Empty is the tracker's "nothing here" line; lines containing it are dropped.
	Empty string

	// Limit caps the number of item lines shown (0 = unlimited).
	Limit int

	// CountArgs, if set, returns a JSON array whose length is the full item
	// count, used to report how many items the limit hid.
	CountArgs []string
}

// DefaultQueries returns the four digest queries in output order.
func DefaultQueries(readyLimit int) []Query {
	if readyLimit <= 0 {
		readyLimit = DefaultReadyLimit
	}
	return []Query{
		{Title: "Insights", Args: []string{"memories"}, Empty: "No memories"},
		{Title: "Decisions", Args: []string{"decisions"}, Empty: "No decisions"},
		{Title: "In Progress", Args: []string{"list", "--status", "in_progress"}, Empty: "No issues found"},
		{Title: "Ready Work", Args: []string{"ready"}, Empty: "No ready work", Limit: readyLimit, CountArgs: []string{"ready", "--json"}},
	}
}

// Summarizer runs the queries and assembles the digest.
type Summarizer struct {
	// Command is the tracker program (default "bd").
	Command string

	// Dir is the project directory; the tracker is only queried when it
	// contains a .beads directory.
	Dir string

	Queries []Query
	Timeout time.Duration
	Runner  execx.Runner

	// Available reports whether Command is installed. Defaults to execx.Available.
	Available func(name string) bool

	Logger *zap.Logger
}

// NewSummarizer creates a summarizer for dir with the default queries.
func NewSummarizer(command, dir string, readyLimit int, timeout time.Duration) *Summarizer {
	if command == "" {
		command = "bd"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Summarizer{
		Command: command,
		Dir:     dir,
		Queries: DefaultQueries(readyLimit),
		Timeout: timeout,
		Runner:  execx.Exec{Timeout: timeout},
	}
}

// section is the filtered result of one query.
type section struct {
	title string
	lines []string
	more  int
}

// Summarize returns the digest, or Tip when the tracker is missing or the
// project is not initialized. Individual query failures drop that section.
func (s *Summarizer) Summarize(ctx context.Context) string {
	log := logging.OrNop(s.Logger)

	available := s.Available
	if available == nil {
		available = execx.Available
	}
	if !available(s.Command) {
		log.Debug("tracker not installed", zap.String("command", s.Command))
		return Tip
	}
	if info, err := os.Stat(filepath.Join(s.Dir, ".beads")); err != nil || !info.IsDir() {
		log.Debug("tracker not initialized", zap.String("dir", s.Dir))
		return Tip
	}

	sections := make([]section, len(s.Queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range s.Queries {
		g.Go(func() error {
			sections[i] = s.run(gctx, q, log)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	return render(sections)
}

func (s *Summarizer) run(ctx context.Context, q Query, log *zap.Logger) section {
	sec := section{title: q.Title}

	out, err := s.query(ctx, q.Args)
	if err != nil {
		log.Debug("tracker query failed", zap.Strings("args", q.Args), zap.Error(err))
		return sec
	}
	lines := filterLines(out, q.Empty)
	if q.Limit <= 0 || len(lines) <= q.Limit {
		sec.lines = lines
		if q.Limit > 0 && len(q.CountArgs) > 0 && len(lines) == q.Limit {
			// Text output may itself be truncated; the JSON count is authoritative.
			sec.more = s.hidden(ctx, q, len(lines), log)
		}
		return sec
	}

	sec.lines = lines[:q.Limit]
	sec.more = len(lines) - q.Limit
	if len(q.CountArgs) > 0 {
		if n := s.hidden(ctx, q, q.Limit, log); n > sec.more {
			sec.more = n
		}
	}
	return sec
}

// hidden returns how many items beyond shown the JSON count reports.
func (s *Summarizer) hidden(ctx context.Context, q Query, shown int, log *zap.Logger) int {
	out, err := s.query(ctx, q.CountArgs)
	if err != nil {
		log.Debug("tracker count failed", zap.Strings("args", q.CountArgs), zap.Error(err))
		return 0
	}
	res := gjson.Parse(out)
	if !res.IsArray() {
		return 0
	}
	return max(int(res.Get("#").Int())-shown, 0)
}

func (s *Summarizer) query(ctx context.Context, args []string) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Runner.Run(ctx, s.Dir, s.Command, args...)
}

// filterLines drops blank lines and any line containing the empty sentinel.
func filterLines(out, empty string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if empty != "" && strings.Contains(line, empty) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func render(sections []section) string {
	var b strings.Builder
	for _, sec := range sections {
		if len(sec.lines) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n", sec.title)
		for _, line := range sec.lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
		if sec.more > 0 {
			fmt.Fprintf(&b, "+%d more\n", sec.more)
		}
	}
	return b.String()
}
