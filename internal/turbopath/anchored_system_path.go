package turbopath

import "path/filepath"

// AnchoredSystemPath is a path stemming from a specified root using system separators.
type AnchoredSystemPath string

func (AnchoredSystemPath) anchoredPathStamp() {}
func (AnchoredSystemPath) systemPathStamp()   {}

// ToString returns a string represenation of this Path.
// Used for interfacing with APIs that require a string.
func (p AnchoredSystemPath) ToString() string {
	return string(p)
}

// ToUnixPath converts a AnchoredSystemPath to a AnchoredUnixPath.
func (p AnchoredSystemPath) ToUnixPath() AnchoredUnixPath {
	return AnchoredUnixPath(filepath.ToSlash(p.ToString()))
}

// RestoreAnchor prefixes the AnchoredSystemPath with its anchor to return an AbsoluteSystemPath.
func (p AnchoredSystemPath) RestoreAnchor(anchor AbsoluteSystemPath) AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Join(anchor.ToString(), p.ToString()))
}
