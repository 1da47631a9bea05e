package apperr

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrNoBackend = errors.New("storage backend not configured")
)
