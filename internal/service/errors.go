package service

import "errors"

// Domain-specific errors for the command service.
var (
	// ErrAlreadyStarted is returned by Start on a running or stopped service.
	ErrAlreadyStarted = errors.New("service: already started")

	// ErrInvalidPayload is returned when a JSON command payload does not parse.
	ErrInvalidPayload = errors.New("service: invalid command payload")
)
