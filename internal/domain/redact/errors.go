package redact

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrTooDeep reports a record nested beyond the configured depth bound.
	ErrTooDeep = errors.New("record exceeds maximum nesting depth")

	// ErrUnsupportedType reports a container that cannot be normalized
	// into a record subtree, such as a map not keyed by strings.
	ErrUnsupportedType = errors.New("record contains an unsupported container type")
)
