package versions

import "errors"

var (
	// ErrNoVersion is returned when a registry response lacks a version.
	ErrNoVersion = errors.New("registry returned no version")

	// ErrUnknownBackend is returned for an unsupported research backend name.
	ErrUnknownBackend = errors.New("unknown research backend")

	// ErrNoAPIKey is returned when the api backend is selected without a key.
	ErrNoAPIKey = errors.New("api research backend requires ANTHROPIC_API_KEY")
)
