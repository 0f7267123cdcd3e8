package gate

import "errors"

// Sentinel errors for rule validation. Callers match with errors.Is.
var (
	// ErrEmptyPattern is returned when a rule has no pattern.
	ErrEmptyPattern = errors.New("pattern must not be empty")

	// ErrEmptyReason is returned when a rule has no denial reason.
	ErrEmptyReason = errors.New("reason must not be empty")

	// ErrInvalidPattern is returned when a regex rule does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrUnknownMatch is returned for a match kind other than substring or regex.
	ErrUnknownMatch = errors.New("unknown match kind")
)
