package exposure

import "errors"

// Sentinel errors for exposure operations. Check with errors.Is.
var (
	// ErrInvalidDocument is returned when a config document fails to decode.
	ErrInvalidDocument = errors.New("exposure: invalid config document")

	// ErrInvalidPattern is returned by ValidatePattern for malformed globs.
	ErrInvalidPattern = errors.New("exposure: invalid pattern")

	// ErrNoRevisions is returned when the revision history is empty.
	ErrNoRevisions = errors.New("exposure: no config revisions")
)
