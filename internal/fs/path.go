package fs

import "github.com/vercel/turbopack/cli/internal/turbopath"

// Path names a file inside a particular FileSystem. It is a small
// comparable value; equal Paths name the same file.
type Path struct {
	fs   FileSystem
	path turbopath.AnchoredUnixPath
}

// NewPath builds a Path for the given filesystem and anchored path.
func NewPath(fs FileSystem, path turbopath.AnchoredUnixPath) Path {
	return Path{fs: fs, path: path}
}

// FileSystem returns the filesystem this path belongs to.
func (p Path) FileSystem() FileSystem { return p.fs }

// Path returns the anchored location inside the filesystem.
func (p Path) Path() turbopath.AnchoredUnixPath { return p.path }

// ToString renders the path rooted at the filesystem root.
func (p Path) ToString() string {
	return "/" + p.path.ToString()
}

// TaskKey implements tasks.Keyable so Paths can be task arguments.
func (p Path) TaskKey() string {
	if p.fs == nil {
		return "path()"
	}
	return "path(" + p.fs.Name() + ":" + p.path.ToString() + ")"
}

// Parent returns the containing directory. The parent of the
// filesystem root is the root itself.
func (p Path) Parent() Path {
	return Path{fs: p.fs, path: p.path.Dir()}
}

// Join appends path segments.
func (p Path) Join(additional ...turbopath.RelativeUnixPath) Path {
	return Path{fs: p.fs, path: p.path.Join(additional...)}
}

// IsInside reports whether the path sits strictly below `dir` on the
// same filesystem.
func (p Path) IsInside(dir Path) bool {
	if p.fs != dir.fs || p.path == dir.path {
		return false
	}
	return p.path.HasPrefix(dir.path)
}

// ReadContent reads the file this path names.
func (p Path) ReadContent() (*FileContent, error) {
	return p.fs.ReadFile(p.path)
}

// Write stores content at this path.
func (p Path) Write(content *FileContent) error {
	return p.fs.WriteFile(p.path, content)
}

// Exists reports whether a file exists at this path.
func (p Path) Exists() bool {
	return p.fs.Exists(p.path)
}
