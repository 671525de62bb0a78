package models

import "errors"

// Domain errors shared by the stores, services and transports.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnavailable     = errors.New("service unavailable")
	ErrUnauthenticated = errors.New("not logged in")
	ErrConflict        = errors.New("already exists")
)
