package shared

import "errors"

var (
	ErrDuplicate = errors.New("duplicate entity")
	ErrNotFound  = errors.New("entity not found")
	ErrInvalid   = errors.New("invalid input")
	ErrCorrupt   = errors.New("stored data is corrupt")
)
