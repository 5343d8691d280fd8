package device

import "fmt"

// Name is a validated device name. It is the primary key of a repository:
// no two registered devices share a Name.
//
// The zero Name is not a valid name; obtain one with ParseName.
type Name struct {
	value string
}

// String returns the name as it was given to ParseName.
func (n Name) String() string {
	return n.value
}

// IsZero reports whether n is the zero Name.
func (n Name) IsZero() bool {
	return n.value == ""
}

// MAC is a validated 6-byte hardware address.
type MAC struct {
	octets [6]byte
}

// String returns the canonical form: lower-case hex octets joined by ':'.
func (m MAC) String() string {
	o := m.octets
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", o[0], o[1], o[2], o[3], o[4], o[5])
}

// Bytes returns the raw octets.
func (m MAC) Bytes() [6]byte {
	return m.octets
}

// Device is a registered wake-on-LAN target.
//
// Devices are plain values: repositories store their own copy and hand out
// copies, so a Device returned by a lookup never aliases repository state.
type Device struct {
	Name Name
	MAC  MAC

	// CheckAddr is an optional host:port polled over TCP after a wake to
	// find out whether the device came up. Empty means no check.
	CheckAddr string
}

// NewDevice validates its arguments and builds a Device.
// checkAddr may be empty.
func NewDevice(name, mac, checkAddr string) (Device, error) {
	n, err := ParseName(name)
	if err != nil {
		return Device{}, err
	}
	m, err := ParseMAC(mac)
	if err != nil {
		return Device{}, err
	}
	if checkAddr != "" {
		if err := ValidateCheckAddr(checkAddr); err != nil {
			return Device{}, err
		}
	}
	return Device{Name: n, MAC: m, CheckAddr: checkAddr}, nil
}

// deviceList is the ordered record sequence shared by both backends.
// Its methods never modify the receiver; mutations return a fresh slice so a
// failed write-back can simply keep the old one.
type deviceList []Device

func (l deviceList) indexByName(name Name) int {
	for i := range l {
		if l[i].Name == name {
			return i
		}
	}
	return -1
}

func (l deviceList) indexByMAC(mac MAC) int {
	for i := range l {
		if l[i].MAC == mac {
			return i
		}
	}
	return -1
}

func (l deviceList) with(d Device) deviceList {
	next := make(deviceList, len(l), len(l)+1)
	copy(next, l)
	return append(next, d)
}

func (l deviceList) without(i int) deviceList {
	next := make(deviceList, 0, len(l)-1)
	next = append(next, l[:i]...)
	return append(next, l[i+1:]...)
}

func (l deviceList) clone() []Device {
	out := make([]Device, len(l))
	copy(out, l)
	return out
}
