// Package hookio decodes the JSON document a host writes to a hook's stdin
// and encodes the structured response a hook may print back.
//
// Input is decoded exactly once into a tagged Event so the hooks never deal
// with loosely typed payloads. Missing or mistyped fields decode to empty
// strings: every hook fails open.
package hookio

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// Tool names the host reports in tool_name.
const (
	ToolWrite        = "Write"
	ToolEdit         = "Edit"
	ToolMultiEdit    = "MultiEdit"
	ToolNotebookEdit = "NotebookEdit"
	ToolBash         = "Bash"
)

// ErrMalformedInput is returned when stdin is not a JSON object.
var ErrMalformedInput = errors.New("hook input is not a JSON object")

// Kind classifies an event by what its payload carries.
type Kind int

const (
	KindOther Kind = iota
	KindWrite
	KindEdit
	KindRun
)

func (k Kind) String() string {
	switch k {
	case KindWrite:
		return "write"
	case KindEdit:
		return "edit"
	case KindRun:
		return "run"
	default:
		return "other"
	}
}

// Meta holds the fields common to every invocation.
type Meta struct {
	SessionID     string
	Cwd           string
	HookEventName string
	ToolName      string
}

// Event is one decoded host tool call. The concrete type is one of
// WriteEvent, EditEvent, RunEvent or OtherEvent.
type Event interface {
	Meta() Meta
	Kind() Kind
}

// WriteEvent is a whole-file write.
type WriteEvent struct {
	meta     Meta
	FilePath string
	Content  string
}

// EditEvent replaces OldText with NewText in FilePath. Multi-edit payloads
// join every replacement with newlines.
type EditEvent struct {
	meta     Meta
	FilePath string
	OldText  string
	NewText  string
}

// RunEvent is a shell command.
type RunEvent struct {
	meta        Meta
	Command     string
	Description string
}

// OtherEvent is any tool the hooks do not inspect.
type OtherEvent struct {
	meta Meta
}

func (e WriteEvent) Meta() Meta { return e.meta }
func (e WriteEvent) Kind() Kind { return KindWrite }
func (e EditEvent) Meta() Meta  { return e.meta }
func (e EditEvent) Kind() Kind  { return KindEdit }
func (e RunEvent) Meta() Meta   { return e.meta }
func (e RunEvent) Kind() Kind   { return KindRun }
func (e OtherEvent) Meta() Meta { return e.meta }
func (e OtherEvent) Kind() Kind { return KindOther }

// NewWriteEvent builds a WriteEvent, mostly for tests and callers that
// synthesize events.
func NewWriteEvent(meta Meta, path, content string) WriteEvent {
	return WriteEvent{meta: meta, FilePath: path, Content: content}
}

// NewEditEvent builds an EditEvent.
func NewEditEvent(meta Meta, path, oldText, newText string) EditEvent {
	return EditEvent{meta: meta, FilePath: path, OldText: oldText, NewText: newText}
}

// NewRunEvent builds a RunEvent.
func NewRunEvent(meta Meta, command string) RunEvent {
	return RunEvent{meta: meta, Command: command}
}

// Read decodes an event from r. On any failure it still returns a usable
// OtherEvent alongside the error so callers can log and allow.
func Read(r io.Reader) (Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return OtherEvent{}, fmt.Errorf("read hook input: %w", err)
	}
	return Decode(data)
}

// Decode parses one host invocation document.
func Decode(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return OtherEvent{}, ErrMalformedInput
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return OtherEvent{}, ErrMalformedInput
	}

	meta := Meta{
		SessionID:     str(root.Get("session_id")),
		Cwd:           str(root.Get("cwd")),
		HookEventName: str(root.Get("hook_event_name")),
		ToolName:      str(root.Get("tool_name")),
	}
	input := root.Get("tool_input")

	switch meta.ToolName {
	case ToolWrite:
		return WriteEvent{
			meta:     meta,
			FilePath: str(input.Get("file_path")),
			Content:  str(input.Get("content")),
		}, nil
	case ToolEdit:
		return EditEvent{
			meta:     meta,
			FilePath: str(input.Get("file_path")),
			OldText:  str(input.Get("old_string")),
			NewText:  str(input.Get("new_string")),
		}, nil
	case ToolMultiEdit:
		return EditEvent{
			meta:     meta,
			FilePath: str(input.Get("file_path")),
			OldText:  joinStrings(input.Get("edits.#.old_string")),
			NewText:  joinStrings(input.Get("edits.#.new_string")),
		}, nil
	case ToolNotebookEdit:
		return EditEvent{
			meta:     meta,
			FilePath: str(input.Get("notebook_path")),
			NewText:  str(input.Get("new_source")),
		}, nil
	case ToolBash:
		return RunEvent{
			meta:        meta,
			Command:     str(input.Get("command")),
			Description: str(input.Get("description")),
		}, nil
	default:
		return OtherEvent{meta: meta}, nil
	}
}

// str accepts only JSON strings; anything else counts as absent.
func str(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}

func joinStrings(r gjson.Result) string {
	if !r.IsArray() {
		return ""
	}
	var parts []string
	for _, v := range r.Array() {
		if s := str(v); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
