package library

import "path/filepath"

// Backend reads a whole catalog from storage and writes a whole catalog back.
// Callers never need to know which implementation is active.
type Backend interface {
	// Import returns a fresh catalog. On error the returned catalog is nil.
	Import() (*Catalog, error)
	// Export overwrites storage with the current state of c.
	Export(c *Catalog) error
}

// Default resource names inside the data directory.
const (
	DefaultPublicationsFile = "Library.csv"
	DefaultUsersFile        = "Library_users.csv"
	DefaultSnapshotFile     = "Library.db"
)

// StorageOptions locates the resources a backend reads and writes.
type StorageOptions struct {
	Dir              string
	PublicationsFile string
	UsersFile        string
	SnapshotFile     string
}

// DefaultStorageOptions uses the default resource names in dir.
func DefaultStorageOptions(dir string) StorageOptions {
	return StorageOptions{
		Dir:              dir,
		PublicationsFile: DefaultPublicationsFile,
		UsersFile:        DefaultUsersFile,
		SnapshotFile:     DefaultSnapshotFile,
	}
}

func (o StorageOptions) path(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(o.Dir, name)
}

func (o StorageOptions) publicationsPath() string {
	return o.path(o.PublicationsFile, DefaultPublicationsFile)
}

func (o StorageOptions) usersPath() string {
	return o.path(o.UsersFile, DefaultUsersFile)
}

func (o StorageOptions) snapshotPath() string {
	return o.path(o.SnapshotFile, DefaultSnapshotFile)
}
