package topology

import "errors"

// Sentinel errors for topology operations. Check with errors.Is.
var (
	// ErrInvalidSnapshot is returned when a snapshot document fails to decode.
	ErrInvalidSnapshot = errors.New("topology: invalid snapshot document")
)
