package device

import (
	"fmt"
	"sync"
)

// MemoryRepository is a volatile Repository. It is used as a test double and
// when the service runs without a records file.
//
// All methods are safe for concurrent use.
type MemoryRepository struct {
	mu      sync.Mutex
	devices deviceList
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Insert registers a device.
func (r *MemoryRepository) Insert(d Device) error {
	if err := validateRecord(d); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.devices.indexByName(d.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrConflict, d.Name)
	}
	r.devices = r.devices.with(d)
	return nil
}

// Delete removes a device by name.
func (r *MemoryRepository) Delete(name Name) (Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.devices.indexByName(name)
	if i < 0 {
		return Device{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	removed := r.devices[i]
	r.devices = r.devices.without(i)
	return removed, nil
}

// FetchByName returns the device with the given name.
func (r *MemoryRepository) FetchByName(name Name) (Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.devices.indexByName(name); i >= 0 {
		return r.devices[i], true
	}
	return Device{}, false
}

// FetchByMAC returns the first device with the given hardware address.
func (r *MemoryRepository) FetchByMAC(mac MAC) (Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.devices.indexByMAC(mac); i >= 0 {
		return r.devices[i], true
	}
	return Device{}, false
}

// FetchAll returns a copy of every device in insertion order.
func (r *MemoryRepository) FetchAll() ([]Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.devices) == 0 {
		return nil, false
	}
	return r.devices.clone(), true
}
