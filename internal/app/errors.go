package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
	ErrNotStarted      = errors.New("service not started")
)
