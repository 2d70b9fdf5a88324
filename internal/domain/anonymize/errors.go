package anonymize

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidInput reports a record that is not a traversable tree.
	ErrInvalidInput = errors.New("invalid input record")
)
