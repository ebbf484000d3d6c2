package domain

import "errors"

// Error kinds recognized by the HTTP layer. Lower layers wrap these with
// context via fmt.Errorf("...: %w", ...).
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)
