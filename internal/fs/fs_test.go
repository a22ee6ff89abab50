package fs

import (
	"testing"

	"github.com/vercel/turbopack/cli/internal/turbopath"
	"gotest.tools/v3/assert"
)

func TestLineStarts(t *testing.T) {
	testCases := []struct {
		name      string
		content   string
		expected  []int
		indexable bool
	}{
		{name: "empty", content: "", expected: []int{0}, indexable: true},
		{name: "single line", content: "hello", expected: []int{0}, indexable: true},
		{name: "two lines", content: "a\nb", expected: []int{0, 2}, indexable: true},
		{name: "trailing newline", content: "a\n", expected: []int{0}, indexable: true},
		{name: "three lines", content: "one\ntwo\nthree", expected: []int{0, 4, 8}, indexable: true},
	}

	for _, tc := range testCases {
		starts, indexable := NewFileContentString(tc.content).LineStarts()
		assert.Equal(t, indexable, tc.indexable, tc.name)
		assert.DeepEqual(t, starts, tc.expected)
	}
}

func TestLineStartsBinaryContent(t *testing.T) {
	content := NewFileContent([]byte{0xff, 0xfe, 0x00})
	_, indexable := content.LineStarts()
	assert.Assert(t, !indexable)
}

func TestPathParent(t *testing.T) {
	filesystem := NewInMemoryFileSystem("test")

	deep := NewPath(filesystem, turbopath.AnchoredUnixPathFromUpstream("a/b/c.js"))
	assert.Equal(t, deep.Parent().ToString(), "/a/b")

	top := NewPath(filesystem, turbopath.AnchoredUnixPathFromUpstream("a.json"))
	assert.Equal(t, top.Parent().ToString(), "/")

	root := NewPath(filesystem, turbopath.AnchoredUnixPathFromUpstream(""))
	assert.Equal(t, root.Parent().ToString(), "/")
}

func TestPathIsInside(t *testing.T) {
	filesystem := NewInMemoryFileSystem("test")
	other := NewInMemoryFileSystem("other")
	path := func(p string) Path {
		return NewPath(filesystem, turbopath.AnchoredUnixPathFromUpstream(p))
	}

	assert.Assert(t, path("out/main.js").IsInside(path("out")))
	assert.Assert(t, path("out/chunks/a.js").IsInside(path("out")))
	assert.Assert(t, !path("a.json").IsInside(path("out")))
	assert.Assert(t, !path("output/main.js").IsInside(path("out")), "prefix of a different directory")
	assert.Assert(t, !path("out").IsInside(path("out")), "containment is strict")
	assert.Assert(t, path("anything").IsInside(path("")), "everything is inside the root")
	assert.Assert(t, !NewPath(other, "out/main.js").IsInside(path("out")), "different filesystem")
}

func TestInMemoryFileSystem(t *testing.T) {
	filesystem := NewInMemoryFileSystem("test")
	target := turbopath.AnchoredUnixPathFromUpstream("dir/file.txt")

	assert.Assert(t, !filesystem.Exists(target))
	_, err := filesystem.ReadFile(target)
	assert.Assert(t, err != nil)

	assert.NilError(t, filesystem.WriteFile(target, NewFileContentString("hello")))
	assert.Assert(t, filesystem.Exists(target))
	assert.Equal(t, filesystem.FileCount(), 1)

	content, err := filesystem.ReadFile(target)
	assert.NilError(t, err)
	assert.Equal(t, string(content.Bytes()), "hello")
}

func TestOsFileSystemRoundTrip(t *testing.T) {
	root := turbopath.AbsoluteSystemPathFromUpstream(t.TempDir())
	filesystem := NewOsFileSystem("disk", root)
	target := turbopath.AnchoredUnixPathFromUpstream("nested/out.txt")

	assert.NilError(t, filesystem.WriteFile(target, NewFileContentString("written")))
	assert.Assert(t, filesystem.Exists(target))

	content, err := filesystem.ReadFile(target)
	assert.NilError(t, err)
	assert.Equal(t, string(content.Bytes()), "written")
}
