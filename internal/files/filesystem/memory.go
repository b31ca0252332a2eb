package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory entries
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Paths use forward slashes; directories exist implicitly above every file.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	root  string
	files map[string][]byte
}

// NewMemoryFileSystem creates an empty in-memory filesystem rooted at root.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	return &MemoryFileSystem{
		root:  path.Clean(filepath.ToSlash(root)),
		files: make(map[string][]byte),
	}
}

// Root returns the normalized root directory.
func (m *MemoryFileSystem) Root() string {
	return m.root
}

// AddFile stores content at relPath below the root, replacing any previous content.
func (m *MemoryFileSystem) AddFile(relPath, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Join(m.root, filepath.ToSlash(relPath))] = []byte(content)
}

// RemoveFile deletes relPath below the root. Missing files are ignored.
func (m *MemoryFileSystem) RemoveFile(relPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path.Join(m.root, filepath.ToSlash(relPath)))
}

// resolve turns p into a clean key; paths outside the root are taken relative to it.
func (m *MemoryFileSystem) resolve(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	if p == m.root || strings.HasPrefix(p, m.root+"/") || path.IsAbs(p) {
		return p
	}
	return path.Join(m.root, p)
}

func (m *MemoryFileSystem) Open(p string) (io.ReadCloser, error) {
	content, err := m.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *MemoryFileSystem) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := m.resolve(p)
	content, ok := m.files[key]
	if !ok {
		if m.isDirLocked(key) {
			return nil, fmt.Errorf("path is a directory: %s", p)
		}
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	return bytes.Clone(content), nil
}

func (m *MemoryFileSystem) ReadDir(p string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dir := m.resolve(p)
	if !m.isDirLocked(dir) {
		return nil, fmt.Errorf("failed to read directory: %w", &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrNotExist})
	}

	seen := make(map[string]FileInfo)
	prefix := strings.TrimSuffix(dir, "/") + "/"
	for name, content := range m.files {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			child := rest[:i]
			seen[child] = dirInfo(child)
			continue
		}
		seen[rest] = fileInfo(rest, content)
	}

	result := make([]FileInfo, 0, len(seen))
	for _, info := range seen {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

func (m *MemoryFileSystem) Stat(p string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := m.resolve(p)
	if content, ok := m.files[key]; ok {
		return fileInfo(path.Base(key), content), nil
	}
	if m.isDirLocked(key) {
		return dirInfo(path.Base(key)), nil
	}
	return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

// isDirLocked reports whether dir is the root or a parent of any stored file.
func (m *MemoryFileSystem) isDirLocked(dir string) bool {
	if dir == m.root {
		return true
	}
	prefix := strings.TrimSuffix(dir, "/") + "/"
	for name := range m.files {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func fileInfo(name string, content []byte) *memoryFileInfo {
	return &memoryFileInfo{name: name, size: int64(len(content)), mode: 0644, modTime: time.Now()}
}

func dirInfo(name string) *memoryFileInfo {
	return &memoryFileInfo{name: name, mode: 0755 | fs.ModeDir, modTime: time.Now(), isDir: true}
}
