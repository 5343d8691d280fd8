package wol

import "errors"

// Domain-specific errors for wake operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrSendFailed is returned when a magic packet cannot be delivered to the network.
	ErrSendFailed = errors.New("wol: send failed")

	// ErrNoCheckAddr is returned when a liveness check is requested without a target.
	ErrNoCheckAddr = errors.New("wol: no check address")
)
