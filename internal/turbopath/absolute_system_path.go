package turbopath

import (
	"os"
	"path/filepath"
)

// AbsoluteSystemPath is a root-relative path using system separators.
type AbsoluteSystemPath string

// For interface reasons, we need a way to distinguish between
// Absolute/Anchored/Relative/System/Unix paths so we stamp them.
func (AbsoluteSystemPath) absolutePathStamp() {}
func (AbsoluteSystemPath) systemPathStamp()   {}

// ToString returns a string represenation of this Path.
// Used for interfacing with APIs that require a string.
func (p AbsoluteSystemPath) ToString() string {
	return string(p)
}

// Dir returns the path with the last element removed.
func (p AbsoluteSystemPath) Dir() AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Dir(p.ToString()))
}

// RelativeTo calculates the relative path between two `AbsoluteSystemPath`s.
func (p AbsoluteSystemPath) RelativeTo(basePath AbsoluteSystemPath) (AnchoredSystemPath, error) {
	processed, err := filepath.Rel(basePath.ToString(), p.ToString())
	return AnchoredSystemPath(processed), err
}

// UntypedJoin is a Join that does not constrain the type of the arguments.
// This enables you to pass in strings, but does not protect you from garbage in.
func (p AbsoluteSystemPath) UntypedJoin(additional ...string) AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Join(p.ToString(), filepath.Join(additional...)))
}

// Open opens the file at the path for reading. It follows symlinks.
func (p AbsoluteSystemPath) Open() (*os.File, error) {
	return os.Open(p.ToString())
}

// Lstat returns information about the path without following symlinks.
func (p AbsoluteSystemPath) Lstat() (os.FileInfo, error) {
	return os.Lstat(p.ToString())
}
