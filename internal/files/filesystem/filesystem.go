package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// FileSystemProvider gives read access to input files.
type FileSystemProvider interface {
	// Open opens the file at path for streaming reads. The caller closes it.
	Open(path string) (io.ReadCloser, error)

	// ReadFile reads a specific file at the given path
	ReadFile(path string) ([]byte, error)

	// ReadDir lists the entries of the directory at path, sorted by name.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns file information for the given path.
	// Missing paths yield an error wrapping fs.ErrNotExist.
	Stat(path string) (FileInfo, error)
}
