// Package gate blocks tool calls that would introduce deprecated APIs,
// packages, or model identifiers into a project.
//
// A Gate is built once per process from explicit Options and is then a pure
// function of the event it evaluates: the bypass flag, the scanned tool set,
// the documentation exclusions and the ordered rule list are all fixed at
// construction.
//
// # Evaluation order
//
// Bypass precedes everything, including malformed input. Tools outside the
// scanned set allow. Writes and edits to documentation files allow, so prose
// may discuss deprecated names. Edits scan only the replacement text, so a
// deprecated call can always be removed. Commands are scanned only when they
// install packages; git messages, searches and echoes may mention anything.
// Rules run in order and the first match decides.
//
// # Failure semantics
//
// The gate is an advisory safety net rather than a security boundary. Missing
// or malformed fields leave nothing to scan and the call is allowed.
package gate
