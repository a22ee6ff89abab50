package issue

import (
	gocontext "context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/tasks"
	"github.com/vercel/turbopack/cli/internal/turbopath"
)

type testIssue struct {
	Base
}

func newTestIssue(path fs.Path, title string) *testIssue {
	return &testIssue{Base: NewBase(path, title, "")}
}

func testPath(name string) fs.Path {
	return fs.NewPath(fs.NewInMemoryFileSystem("test"), turbopath.AnchoredUnixPathFromUpstream(name))
}

func TestSeverityOrdering(t *testing.T) {
	severities := []Severity{Info, Bug, Warning, Error}
	sort.Slice(severities, func(i, j int) bool { return severities[i] < severities[j] })
	assert.Equal(t, []Severity{Bug, Error, Warning, Info}, severities)
}

func TestSeverityStrings(t *testing.T) {
	assert.Equal(t, "bug", Bug.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "suggestions", Suggestions.String())
	assert.Equal(t, "unrecoverable problem", Fatal.HelpString())
}

func TestPathItemString(t *testing.T) {
	context := testPath("p")
	withContext := &PathItem{Context: &context, Description: "inside p"}
	assert.Equal(t, "/p (inside p)", withContext.String())

	bare := &PathItem{Description: "just text"}
	assert.Equal(t, "just text", bare.String())
}

func TestDefaultIssueFields(t *testing.T) {
	i := newTestIssue(testPath("src/a.ts"), "something broke")
	assert.Equal(t, Error, i.Severity())
	assert.Equal(t, "", i.Category())
	assert.Equal(t, "", i.DocumentationLink())
	assert.Nil(t, i.Source())
	assert.Empty(t, i.SubIssues())
}

func chain(issue Issue, descriptions ...string) ProcessingPath {
	var current ProcessingPath = &rootProcessingPath{issue: issue}
	for index := len(descriptions) - 1; index >= 0; index-- {
		current = &itemProcessingPath{
			item:     &PathItem{Description: descriptions[index]},
			children: []ProcessingPath{current},
		}
	}
	return current
}

func itemStrings(items []*PathItem) []string {
	result := make([]string, len(items))
	for index, item := range items {
		result[index] = item.String()
	}
	return result
}

func TestShortestPathLexicographicTiebreak(t *testing.T) {
	x := newTestIssue(testPath("x"), "X")
	root := &itemProcessingPath{children: []ProcessingPath{
		chain(x, "a1", "a2"),
		chain(x, "b1", "b2"),
	}}

	items, found, err := root.ShortestPath(x)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"a1", "a2"}, itemStrings(items))
}

func TestShortestPathLengthWins(t *testing.T) {
	x := newTestIssue(testPath("x"), "X")
	root := &itemProcessingPath{children: []ProcessingPath{
		chain(x, "z-long", "z-longer"),
		chain(x, "y-short"),
	}}

	items, found, err := root.ShortestPath(x)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"y-short"}, itemStrings(items))
}

func TestShortestPathMissingIssue(t *testing.T) {
	x := newTestIssue(testPath("x"), "X")
	other := newTestIssue(testPath("y"), "Y")
	root := &itemProcessingPath{children: []ProcessingPath{chain(x, "a")}}

	_, found, err := root.ShortestPath(other)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestShortestPathEmptyChildren(t *testing.T) {
	x := newTestIssue(testPath("x"), "X")
	root := &itemProcessingPath{}
	_, _, err := root.ShortestPath(x)
	assert.EqualError(t, err, "path can't be empty")
}

func TestEmitAndCapture(t *testing.T) {
	run := tasks.NewRun(gocontext.Background())
	ctx := run.Context()
	raised := newTestIssue(testPath("src/a.ts"), "broken import")

	work := ctx.Spawn("work", func(ctx *tasks.Context, args []interface{}) (interface{}, error) {
		Emit(ctx, raised)
		return nil, nil
	})
	_, err := work.Get(ctx)
	require.NoError(t, err)

	captured := TakeIssuesWithPath(ctx, work)
	assert.False(t, captured.IsEmpty())
	assert.Equal(t, 1, captured.Len())

	withPaths, err := captured.WithShortestPaths()
	require.NoError(t, err)
	require.Len(t, withPaths, 1)
	assert.Equal(t, Issue(raised), withPaths[0].Issue)
	assert.True(t, withPaths[0].HasPath, "every raised issue has at least a trivial attribution")
	assert.Empty(t, withPaths[0].Path)

	assert.True(t, PeekIssuesWithPath(ctx, work).IsEmpty(), "take stops propagation")
}

func TestAttachContextReRoots(t *testing.T) {
	run := tasks.NewRun(gocontext.Background())
	ctx := run.Context()
	x := newTestIssue(testPath("src/inner.ts"), "X")

	caller := ctx.Spawn("caller", func(ctx *tasks.Context, args []interface{}) (interface{}, error) {
		sub := ctx.Spawn("sub", func(ctx *tasks.Context, args []interface{}) (interface{}, error) {
			Emit(ctx, x)
			return nil, nil
		})
		if _, err := sub.Get(ctx); err != nil {
			return nil, err
		}
		AttachContext(ctx, testPath("p"), "inside p", sub)
		return nil, nil
	})
	_, err := caller.Get(ctx)
	require.NoError(t, err)

	captured := PeekIssuesWithPath(ctx, caller)
	withPaths, err := captured.WithShortestPaths()
	require.NoError(t, err)
	require.Len(t, withPaths, 1)
	assert.Equal(t, Issue(x), withPaths[0].Issue)
	require.True(t, withPaths[0].HasPath)
	assert.Equal(t, []string{"/p (inside p)"}, itemStrings(withPaths[0].Path))
}

func TestSourceFromByteOffset(t *testing.T) {
	filesystem := fs.NewInMemoryFileSystem("test")
	path := turbopath.AnchoredUnixPathFromUpstream("main.js")
	content := "hello\nworld\nagain"
	require.NoError(t, filesystem.WriteFile(path, fs.NewFileContentString(content)))

	run := tasks.NewRun(gocontext.Background())
	ctx := run.Context()
	a := asset.NewSource(fs.NewPath(filesystem, path))

	source, err := SourceFromByteOffset(ctx, a, 8, 13)
	require.NoError(t, err)
	assert.Equal(t, SourcePos{Line: 1, Column: 2}, source.Start)
	assert.Equal(t, SourcePos{Line: 2, Column: 1}, source.End)

	// round trip: the byte at lineStarts[line]+column is the byte at
	// the original offset
	starts, indexable := fs.NewFileContentString(content).LineStarts()
	require.True(t, indexable)
	for offset := 0; offset < len(content); offset++ {
		pos := findLineAndColumn(starts, offset)
		assert.Equal(t, content[offset], content[starts[pos.Line]+pos.Column], "offset %d", offset)
	}
}

func TestSourceFromByteOffsetBinaryContent(t *testing.T) {
	filesystem := fs.NewInMemoryFileSystem("test")
	path := turbopath.AnchoredUnixPathFromUpstream("blob.bin")
	require.NoError(t, filesystem.WriteFile(path, fs.NewFileContent([]byte{0xff, 0xfe})))

	run := tasks.NewRun(gocontext.Background())
	ctx := run.Context()
	a := asset.NewSource(fs.NewPath(filesystem, path))

	source, err := SourceFromByteOffset(ctx, a, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, SourcePos{}, source.Start)
	assert.Equal(t, MaxSourcePos(), source.End)
}
