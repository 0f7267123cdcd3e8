package hookio

import (
	"encoding/json"
	"io"
)

// Host event names.
const (
	EventSessionStart = "SessionStart"
	EventPreToolUse   = "PreToolUse"
	EventPostToolUse  = "PostToolUse"
)

// Permission decisions understood by the host.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Response is the JSON document a hook prints on stdout.
// A hook that allows silently prints nothing at all.
type Response struct {
	SystemMessage      string          `json:"systemMessage,omitempty"`
	HookSpecificOutput *SpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// SpecificOutput carries the per-event payload.
type SpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
	AdditionalContext        string `json:"additionalContext,omitempty"`
}

// Deny builds a permission denial for the given event.
func Deny(event, reason string) *Response {
	return &Response{
		HookSpecificOutput: &SpecificOutput{
			HookEventName:            event,
			PermissionDecision:       DecisionDeny,
			PermissionDecisionReason: reason,
		},
	}
}

// Context builds a response that injects additional context for the model.
func Context(event, systemMessage, context string) *Response {
	return &Response{
		SystemMessage: systemMessage,
		HookSpecificOutput: &SpecificOutput{
			HookEventName:     event,
			AdditionalContext: context,
		},
	}
}

// Write encodes resp as a single JSON line.
func Write(w io.Writer, resp *Response) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // reasons quote code with < > &
	return enc.Encode(resp)
}
