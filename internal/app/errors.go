package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrResourceNotFound = errors.New("resource not found in project")
)
