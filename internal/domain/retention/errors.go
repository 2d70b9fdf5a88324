package retention

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrUnknownCategory reports a category with no retention table entry.
	ErrUnknownCategory = errors.New("unknown retention category")
)
