package device

import (
	"errors"
	"fmt"
)

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrConflict) {
//	    // name already registered
//	}
//
// Validation errors form a small hierarchy: ErrInvalidHex matches
// ErrInvalidMAC, which in turn matches ErrValidation.
var (
	// ErrValidation is the parent of every input validation error.
	// Validation errors are reported before any repository mutation is attempted.
	ErrValidation = errors.New("device: invalid input")

	// ErrInvalidName is returned when a device name is empty, too long,
	// or contains characters other than letters and numbers.
	ErrInvalidName = fmt.Errorf("%w: name", ErrValidation)

	// ErrInvalidMAC is the parent of all hardware address parse errors.
	ErrInvalidMAC = fmt.Errorf("%w: mac address", ErrValidation)

	// ErrInvalidFormat is returned when a hardware address has the wrong length.
	ErrInvalidFormat = fmt.Errorf("%w: wrong length", ErrInvalidMAC)

	// ErrInvalidSeparator is returned when octets are not joined uniformly by ':' or '-'.
	ErrInvalidSeparator = fmt.Errorf("%w: separator must be ':' or '-'", ErrInvalidMAC)

	// ErrInvalidHex is returned when an octet is not a two-digit hexadecimal number.
	ErrInvalidHex = fmt.Errorf("%w: bad hex octet", ErrInvalidMAC)

	// ErrInvalidCheckAddr is returned when a liveness check address is not host:port.
	ErrInvalidCheckAddr = fmt.Errorf("%w: check address", ErrValidation)

	// ErrConflict is returned when inserting a device whose name is already registered.
	ErrConflict = errors.New("device: already exists")

	// ErrNotFound is returned when deleting a device that is not registered.
	// A lookup miss is not an error and never returns ErrNotFound.
	ErrNotFound = errors.New("device: not found")

	// ErrPersistenceFailed is returned when the records file cannot be read,
	// or when writing or replacing it fails during a mutation. After a failed
	// mutation the repository still holds its pre-mutation state.
	ErrPersistenceFailed = errors.New("device: persistence failed")

	// ErrCorruptData is returned when the records file does not parse as a
	// sequence of valid device records.
	ErrCorruptData = errors.New("device: corrupt records file")

	// ErrUnknownBackend is returned by Open for an unrecognised backend name.
	ErrUnknownBackend = errors.New("device: unknown repository backend")
)
