package artifact

import "errors"

// Sentinel errors for artifact operations. Check with errors.Is.
var (
	// ErrArtifactMissing is returned when no artifact has been written yet.
	ErrArtifactMissing = errors.New("artifact: managed file does not exist")

	// ErrInvalidArtifact is returned when an artifact fails to parse.
	ErrInvalidArtifact = errors.New("artifact: invalid managed file")

	// ErrNoForeignConfig is returned when no foreign configuration file
	// is configured or present.
	ErrNoForeignConfig = errors.New("artifact: no foreign configuration file")

	// ErrInvalidForeignConfig is returned when the foreign configuration
	// fails to parse.
	ErrInvalidForeignConfig = errors.New("artifact: invalid foreign configuration")
)
