package versions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/boshu2/claude-hooks/internal/execx"
)

// Research backends.
const (
	BackendCLI = "cli"
	BackendAPI = "api"
)

const (
	DefaultResearchTimeout = 300 * time.Second
	DefaultMaxResearch     = 10
	defaultMaxTokens       = 1024
)

// Researcher writes a short breaking-changes brief for a major-version jump.
type Researcher interface {
	Research(ctx context.Context, pkg string, oldMajor, newMajor int) (string, error)
}

// Prompt is the research request for pkg moving from oldMajor to newMajor.
func Prompt(pkg string, oldMajor, newMajor int) string {
	return fmt.Sprintf(`Breaking changes: %[1]s v%[2]d → v%[3]d

You're providing context to an AI coding assistant. The codebase has v%[2]d pinned but v%[3]d is latest.

Return ONLY:
- 3-5 bullet points: breaking changes that affect code written today
- For API changes, show: `+"`old way` → `new way`"+`

Be terse. No migration guides, no installation steps, no sources, no headers.
This gets injected into context - every word costs attention.`, pkg, oldMajor, newMajor)
}

// CLIResearcher runs a headless agent CLI with the prompt.
type CLIResearcher struct {
	Command string
	Dir     string
	Timeout time.Duration
	Runner  execx.Runner
}

// NewCLIResearcher creates a CLI researcher for command (default "claude").
func NewCLIResearcher(command string, timeout time.Duration) *CLIResearcher {
	if command == "" {
		command = "claude"
	}
	if timeout <= 0 {
		timeout = DefaultResearchTimeout
	}
	return &CLIResearcher{
		Command: command,
		Timeout: timeout,
		Runner:  execx.Exec{Timeout: timeout},
	}
}

// Research implements Researcher.
func (c *CLIResearcher) Research(ctx context.Context, pkg string, oldMajor, newMajor int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	out, err := c.Runner.Run(ctx, c.Dir, c.Command,
		"-p", Prompt(pkg, oldMajor, newMajor),
		"--output-format", "text",
		"--dangerously-skip-permissions",
	)
	if err != nil {
		return "", err
	}
	return out, nil
}

// messageClient is the slice of the Anthropic client the API backend uses.
type messageClient interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// APIResearcher asks the Anthropic Messages API directly.
type APIResearcher struct {
	messages  messageClient
	model     string
	maxTokens int64
	timeout   time.Duration
}

// NewAPIResearcher creates an API researcher. Extra options are passed to the
// client (base URL, retries).
func NewAPIResearcher(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) (*APIResearcher, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	if timeout <= 0 {
		timeout = DefaultResearchTimeout
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &APIResearcher{
		messages:  &client.Messages,
		model:     model,
		maxTokens: defaultMaxTokens,
		timeout:   timeout,
	}, nil
}

// Research implements Researcher.
func (a *APIResearcher) Research(ctx context.Context, pkg string, oldMajor, newMajor int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	msg, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(Prompt(pkg, oldMajor, newMajor))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("messages api: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// NewResearcher builds the backend named by backend.
func NewResearcher(backend, command, apiKey, model string, timeout time.Duration) (Researcher, error) {
	switch backend {
	case "", BackendCLI:
		return NewCLIResearcher(command, timeout), nil
	case BackendAPI:
		return NewAPIResearcher(apiKey, model, timeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// failureText renders a research error as the parenthesized note shown in
// place of a brief. Notes starting with "(" are never cached.
func failureText(pkg string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("(Research timed out for %s)", pkg)
	}
	return fmt.Sprintf("(Research failed for %s: %v)", pkg, err)
}

func isFailure(summary string) bool {
	return summary == "" || strings.HasPrefix(summary, "(")
}
