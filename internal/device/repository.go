package device

import "fmt"

// Repository defines the device store used by the CLI and the command service.
// Two implementations exist: MemoryRepository (volatile) and FileRepository
// (durable). Both are safe for concurrent use and serialise every operation
// behind a single per-instance lock.
type Repository interface {
	// Insert registers a device.
	// Returns ErrConflict if a device with the same name exists, and
	// ErrPersistenceFailed if a durable backend could not write the change.
	Insert(d Device) error

	// Delete removes a device by name and returns the removed record.
	// Returns ErrNotFound if no device has that name, and
	// ErrPersistenceFailed if a durable backend could not write the change.
	Delete(name Name) (Device, error)

	// FetchByName returns the device with the given name.
	// The boolean is false when there is none; a miss is not an error.
	FetchByName(name Name) (Device, bool)

	// FetchByMAC returns the first device, in insertion order, with the given
	// hardware address.
	FetchByMAC(mac MAC) (Device, bool)

	// FetchAll returns every device in insertion order.
	// The boolean is false when the repository is empty.
	FetchAll() ([]Device, bool)
}

// Logger defines the logging interface used by repositories.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
)

// OpenOptions selects and configures a repository backend.
type OpenOptions struct {
	// Backend is BackendFile or BackendMemory.
	Backend string

	// Path is the records file for BackendFile.
	Path string

	// CreateIfMissing creates an empty records file when Path does not exist.
	CreateIfMissing bool

	// Logger is optional.
	Logger Logger
}

// Open builds the repository described by opts.
func Open(opts OpenOptions) (Repository, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryRepository(), nil
	case BackendFile, "":
		var (
			repo *FileRepository
			err  error
		)
		if opts.CreateIfMissing {
			repo, err = CreateFileRepository(opts.Path)
		} else {
			repo, err = OpenFileRepository(opts.Path)
		}
		if err != nil {
			return nil, err
		}
		if opts.Logger != nil {
			repo.SetLogger(opts.Logger)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
