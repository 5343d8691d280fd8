// Package device provides the device registry for wololo.
//
// The registry holds the wake-on-LAN targets known to the system: a unique
// name, a hardware address and an optional TCP address used to check that a
// woken machine came up. It is consumed by the CLI and by the MQTT command
// service through the Repository interface.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                       Device Registry                        │
//	│                                                              │
//	│  ┌────────────────┐   ┌─────────────────┐   ┌─────────────┐  │
//	│  │   Validation   │   │   Repository    │   │    Codec    │  │
//	│  │(validation.go) │──▶│ (memory.go,     │──▶│ (codec.go)  │  │
//	│  │ • ParseName    │   │  file.go)       │   │ • YAML      │  │
//	│  │ • ParseMAC     │   │ • one mutex     │   │ • strict    │  │
//	│  └────────────────┘   │ • atomic rename │   └─────────────┘  │
//	│                       └─────────────────┘                    │
//	└──────────────────────────────────────────────────────────────┘
//
// # Usage
//
//	repo, err := device.CreateFileRepository("devices.yml")
//	if err != nil {
//	    return err
//	}
//
//	d, err := device.NewDevice("pc1", "00-01-02-03-04-05", "")
//	if err != nil {
//	    return err // errors.Is(err, device.ErrValidation)
//	}
//	if err := repo.Insert(d); errors.Is(err, device.ErrConflict) {
//	    // name already registered
//	}
//
//	name, _ := device.ParseName("pc1")
//	if d, ok := repo.FetchByName(name); ok {
//	    fmt.Println(d.MAC) // 00:01:02:03:04:05
//	}
//
// # Persistence
//
// FileRepository keeps the full record set in memory and rewrites the whole
// file on every mutation: write to a temporary file in the same directory,
// fsync, then rename over the target. A crash mid-write leaves the previous
// file intact. If the write or rename fails, the mutation is reported as
// ErrPersistenceFailed and the in-memory state is not changed.
//
// # Thread Safety
//
// Both repositories are safe for concurrent use. Each instance serialises all
// operations, reads included, behind one mutex. There is no cross-process
// locking: two processes pointing at the same file will overwrite each
// other's changes.
package device
