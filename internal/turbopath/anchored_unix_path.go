package turbopath

import (
	gopath "path"
	"path/filepath"
	"strings"
)

// AnchoredUnixPath is a path stemming from a specified root using Unix `/` separators.
type AnchoredUnixPath string

func (AnchoredUnixPath) anchoredPathStamp() {}
func (AnchoredUnixPath) unixPathStamp()     {}

// ToString returns a string represenation of this Path.
// Used for interfacing with APIs that require a string.
func (p AnchoredUnixPath) ToString() string {
	return string(p)
}

// ToSystemPath converts a AnchoredUnixPath to a AnchoredSystemPath.
func (p AnchoredUnixPath) ToSystemPath() AnchoredSystemPath {
	return AnchoredSystemPath(filepath.FromSlash(p.ToString()))
}

// Dir returns the path with the last element removed.
// The root of the anchor is the empty path, not ".".
func (p AnchoredUnixPath) Dir() AnchoredUnixPath {
	dir := gopath.Dir(p.ToString())
	if dir == "." || dir == "/" {
		return ""
	}
	return AnchoredUnixPath(dir)
}

// Join appends relative path segments to this AnchoredUnixPath.
func (p AnchoredUnixPath) Join(additional ...RelativeUnixPath) AnchoredUnixPath {
	segments := make([]string, 0, len(additional)+1)
	segments = append(segments, p.ToString())
	for _, segment := range additional {
		segments = append(segments, segment.ToString())
	}
	return AnchoredUnixPath(gopath.Join(segments...))
}

// HasPrefix reports whether the path is `prefix` itself or sits below it.
// The empty path is the anchor root and is a prefix of everything.
func (p AnchoredUnixPath) HasPrefix(prefix AnchoredUnixPath) bool {
	if prefix == "" {
		return true
	}
	return p == prefix || strings.HasPrefix(p.ToString(), prefix.ToString()+"/")
}
