package fs

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/vercel/turbopack/cli/internal/turbopath"
)

// FileSystem is the minimal surface the graph core needs. Paths are
// anchored at the filesystem's root.
type FileSystem interface {
	// Name identifies the filesystem in path strings and task keys.
	Name() string
	ReadFile(path turbopath.AnchoredUnixPath) (*FileContent, error)
	WriteFile(path turbopath.AnchoredUnixPath, content *FileContent) error
	Exists(path turbopath.AnchoredUnixPath) bool
}

// InMemoryFileSystem is a FileSystem held entirely in process memory.
// It backs unit tests and virtual output targets.
type InMemoryFileSystem struct {
	name string

	mu    sync.RWMutex
	files map[turbopath.AnchoredUnixPath]*FileContent
}

var _ FileSystem = (*InMemoryFileSystem)(nil)

// NewInMemoryFileSystem creates an empty in-memory filesystem.
func NewInMemoryFileSystem(name string) *InMemoryFileSystem {
	return &InMemoryFileSystem{
		name:  name,
		files: map[turbopath.AnchoredUnixPath]*FileContent{},
	}
}

// Name implements FileSystem.Name.
func (m *InMemoryFileSystem) Name() string { return m.name }

// ReadFile implements FileSystem.ReadFile.
func (m *InMemoryFileSystem) ReadFile(path turbopath.AnchoredUnixPath) (*FileContent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "reading %v", path)
	}
	return content, nil
}

// WriteFile implements FileSystem.WriteFile.
func (m *InMemoryFileSystem) WriteFile(path turbopath.AnchoredUnixPath, content *FileContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
	return nil
}

// Exists implements FileSystem.Exists.
func (m *InMemoryFileSystem) Exists(path turbopath.AnchoredUnixPath) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[path]
	return ok
}

// FileCount returns the number of files currently stored.
func (m *InMemoryFileSystem) FileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// OsFileSystem is a FileSystem rooted at a directory on disk.
type OsFileSystem struct {
	name string
	root turbopath.AbsoluteSystemPath
}

var _ FileSystem = (*OsFileSystem)(nil)

// NewOsFileSystem creates a filesystem rooted at the given directory.
func NewOsFileSystem(name string, root turbopath.AbsoluteSystemPath) *OsFileSystem {
	return &OsFileSystem{name: name, root: root}
}

// Name implements FileSystem.Name.
func (o *OsFileSystem) Name() string { return o.name }

// Root returns the directory this filesystem is anchored at.
func (o *OsFileSystem) Root() turbopath.AbsoluteSystemPath { return o.root }

func (o *OsFileSystem) resolve(path turbopath.AnchoredUnixPath) turbopath.AbsoluteSystemPath {
	return path.ToSystemPath().RestoreAnchor(o.root)
}

// ReadFile implements FileSystem.ReadFile.
func (o *OsFileSystem) ReadFile(path turbopath.AnchoredUnixPath) (*FileContent, error) {
	data, err := os.ReadFile(o.resolve(path).ToString())
	if err != nil {
		return nil, errors.Wrapf(err, "reading %v", path)
	}
	return NewFileContent(data), nil
}

// WriteFile implements FileSystem.WriteFile.
func (o *OsFileSystem) WriteFile(path turbopath.AnchoredUnixPath, content *FileContent) error {
	target := o.resolve(path)
	if err := os.MkdirAll(target.Dir().ToString(), 0755); err != nil {
		return errors.Wrapf(err, "creating directory for %v", path)
	}
	if err := os.WriteFile(target.ToString(), content.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "writing %v", path)
	}
	return nil
}

// Exists implements FileSystem.Exists.
func (o *OsFileSystem) Exists(path turbopath.AnchoredUnixPath) bool {
	info, err := os.Lstat(o.resolve(path).ToString())
	return err == nil && !info.IsDir()
}
