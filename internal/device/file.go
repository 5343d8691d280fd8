package device

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// defaultFilePerm is used for records files created by CreateFileRepository.
const defaultFilePerm fs.FileMode = 0o600

// fileOps is the filesystem seam used by write-back. Tests replace single
// operations to simulate a failing disk.
type fileOps struct {
	createTemp func(dir, pattern string) (*os.File, error)
	rename     func(oldpath, newpath string) error
	remove     func(name string) error
}

var osFileOps = fileOps{
	createTemp: os.CreateTemp,
	rename:     os.Rename,
	remove:     os.Remove,
}

// FileRepository is a durable Repository backed by a single YAML file.
//
// The file is loaded once by OpenFileRepository; afterwards reads are served
// from memory. Every mutation rewrites the whole file into a temporary file in
// the same directory and renames it over the original while holding the
// instance lock, so the file on disk always holds either the pre-mutation or
// the post-mutation record set. Memory is only updated once the rename has
// succeeded; a failed write-back leaves both unchanged.
//
// All methods are safe for concurrent use within one process. Nothing
// protects the file against a second process writing to the same path.
type FileRepository struct {
	path   string
	perm   fs.FileMode
	ops    fileOps
	logger Logger

	mu      sync.Mutex
	devices deviceList
}

// OpenFileRepository loads the records file at path.
//
// Returns ErrPersistenceFailed if the file cannot be read and ErrCorruptData
// if its content is not a sequence of valid device records.
func OpenFileRepository(path string) (*FileRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrPersistenceFailed, path, err)
	}

	devices, err := decodeDevices(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	perm := defaultFilePerm
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	return &FileRepository{
		path:    path,
		perm:    perm,
		ops:     osFileOps,
		logger:  noopLogger{},
		devices: devices,
	}, nil
}

// CreateFileRepository opens the records file at path, first creating it
// with an empty record sequence if it does not exist.
func CreateFileRepository(path string) (*FileRepository, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return OpenFileRepository(path)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	r := &FileRepository{
		path:   path,
		perm:   defaultFilePerm,
		ops:    osFileOps,
		logger: noopLogger{},
	}
	if err := r.writeBack(nil); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", ErrPersistenceFailed, path, err)
	}
	return r, nil
}

// SetLogger sets the logger for the repository.
func (r *FileRepository) SetLogger(logger Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Path returns the records file path.
func (r *FileRepository) Path() string {
	return r.path
}

// Insert registers a device and persists the new record set.
func (r *FileRepository) Insert(d Device) error {
	if err := validateRecord(d); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.devices.indexByName(d.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrConflict, d.Name)
	}

	next := r.devices.with(d)
	if err := r.writeBack(next); err != nil {
		r.logger.Error("device write-back failed",
			"op", "insert",
			"name", d.Name.String(),
			"path", r.path,
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	r.devices = next
	r.logger.Debug("device inserted", "name", d.Name.String(), "count", len(next))
	return nil
}

// Delete removes a device by name and persists the new record set.
func (r *FileRepository) Delete(name Name) (Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.devices.indexByName(name)
	if i < 0 {
		return Device{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	removed := r.devices[i]
	next := r.devices.without(i)
	if err := r.writeBack(next); err != nil {
		r.logger.Error("device write-back failed",
			"op", "delete",
			"name", name.String(),
			"path", r.path,
			"error", err,
		)
		return Device{}, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	r.devices = next
	r.logger.Debug("device deleted", "name", name.String(), "count", len(next))
	return removed, nil
}

// FetchByName returns the device with the given name.
func (r *FileRepository) FetchByName(name Name) (Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.devices.indexByName(name); i >= 0 {
		return r.devices[i], true
	}
	return Device{}, false
}

// FetchByMAC returns the first device with the given hardware address.
func (r *FileRepository) FetchByMAC(mac MAC) (Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.devices.indexByMAC(mac); i >= 0 {
		return r.devices[i], true
	}
	return Device{}, false
}

// FetchAll returns a copy of every device in insertion order.
func (r *FileRepository) FetchAll() ([]Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.devices) == 0 {
		return nil, false
	}
	return r.devices.clone(), true
}

// writeBack replaces the records file with the serialised devices.
//
// The temporary file lives next to the target so the final rename stays on
// one filesystem. On error the temporary file is removed and the target is
// left untouched. Callers must hold r.mu (or own r exclusively).
func (r *FileRepository) writeBack(devices deviceList) (err error) {
	data, err := encodeDevices(devices)
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := r.ops.createTemp(dir, "."+filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = r.ops.remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Chmod(r.perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err = r.ops.rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replacing %s: %w", r.path, err)
	}

	syncDir(dir)
	return nil
}

// syncDir flushes a directory entry change to disk. Not every platform
// supports fsync on directories, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
