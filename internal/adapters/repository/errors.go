package repository

import "errors"

// Sentinel kinds for project store errors.
var (
	ErrNotFound       = errors.New("project not found")
	ErrConflict       = errors.New("project already exists")
	ErrInvalidProject = errors.New("invalid project")
)
