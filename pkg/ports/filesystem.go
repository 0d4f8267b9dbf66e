package ports

// FileSystem abstracts file system operations.
// Frame workspaces are flat directories, so listing is not recursive.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error

	// Rename moves a file to a new path, replacing any existing file.
	Rename(oldPath, newPath string) error

	// ListFiles returns the names of the regular files directly inside dir,
	// sorted lexically. A missing directory yields an empty list.
	ListFiles(dir string) ([]string, error)
}
