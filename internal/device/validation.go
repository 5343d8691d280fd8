package device

import (
	"fmt"
	"net"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Validation constants.
const (
	maxNameLength = 64

	// macStringLength is the length of "xx:xx:xx:xx:xx:xx".
	macStringLength = 17
	macOctets       = 6
)

// ParseName validates a device name.
//
// A name must be non-empty, at most maxNameLength runes, and consist only of
// Unicode letters and numbers (any numeric category, so "²" and "Ⅻ" are
// accepted).
func ParseName(s string) (Name, error) {
	if s == "" {
		return Name{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if utf8.RuneCountInString(s) > maxNameLength {
		return Name{}, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return Name{}, fmt.Errorf("%w: %q must only contain letters and numbers", ErrInvalidName, s)
		}
	}
	return Name{value: s}, nil
}

// ParseMAC parses a hardware address written as six two-digit hex octets
// joined uniformly by ':' or uniformly by '-', e.g. "00:1a:2b:3c:4d:5e" or
// "00-1A-2B-3C-4D-5E".
func ParseMAC(s string) (MAC, error) {
	if len(s) != macStringLength {
		return MAC{}, fmt.Errorf("%w: got %d characters, want %d", ErrInvalidFormat, len(s), macStringLength)
	}

	sep := s[2]
	if sep != ':' && sep != '-' {
		return MAC{}, fmt.Errorf("%w: got %q", ErrInvalidSeparator, sep)
	}

	var m MAC
	for i := 0; i < macOctets; i++ {
		off := i * 3
		if i > 0 && s[off-1] != sep {
			return MAC{}, fmt.Errorf("%w: got %q at position %d, want %q", ErrInvalidSeparator, s[off-1], off-1, sep)
		}
		b, err := strconv.ParseUint(s[off:off+2], 16, 8)
		if err != nil {
			return MAC{}, fmt.Errorf("%w: octet %d is %q", ErrInvalidHex, i+1, s[off:off+2])
		}
		m.octets[i] = byte(b)
	}
	return m, nil
}

// ValidateCheckAddr checks that addr is a host:port pair with a numeric port.
func ValidateCheckAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCheckAddr, err)
	}
	if host == "" {
		return fmt.Errorf("%w: %q has no host", ErrInvalidCheckAddr, addr)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil || p == 0 {
		return fmt.Errorf("%w: %q has an invalid port", ErrInvalidCheckAddr, addr)
	}
	return nil
}

// validateRecord guards repository entry points against Devices that were
// built without NewDevice.
func validateRecord(d Device) error {
	if d.Name.IsZero() {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if d.CheckAddr != "" {
		return ValidateCheckAddr(d.CheckAddr)
	}
	return nil
}
