package prospect

import "errors"

var (
	ErrNotFound   = errors.New("prospect not found")
	ErrConflict   = errors.New("prospect modified concurrently")
	ErrValidation = errors.New("validation failed")
	ErrBackend    = errors.New("backend error")
)
