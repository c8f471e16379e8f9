package condition

import "errors"

// Sentinel errors for the condition registry.
var (
	ErrNotFound      = errors.New("condition type not registered")
	ErrAlreadyExists = errors.New("condition type already registered")
	ErrEmptyType     = errors.New("condition type is empty")
)
