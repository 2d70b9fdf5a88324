package repository

import "errors"

// Sentinel kinds for archive errors.
var (
	ErrNotFound     = errors.New("result not found")
	ErrInvalidLimit = errors.New("invalid listing limit")
)
