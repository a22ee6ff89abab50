package issue

import (
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/tasks"
)

func takePaths(ctx *tasks.Context, source *tasks.Value) []ProcessingPath {
	raw := ctx.TakeCollectibles(source, isProcessingPath)
	paths := make([]ProcessingPath, len(raw))
	for index, value := range raw {
		paths[index] = value.(ProcessingPath)
	}
	return paths
}

func peekPaths(ctx *tasks.Context, source *tasks.Value) []ProcessingPath {
	raw := ctx.PeekCollectibles(source, isProcessingPath)
	paths := make([]ProcessingPath, len(raw))
	for index, value := range raw {
		paths[index] = value.(ProcessingPath)
	}
	return paths
}

func toIssues(raw []interface{}) []Issue {
	issues := make([]Issue, len(raw))
	for index, value := range raw {
		issues[index] = value.(Issue)
	}
	return issues
}

// AttachContext takes the processing-path collectibles below `source`
// and re-emits them from the current task wrapped in an item with the
// given context path and description. The value itself is returned
// unchanged; its bubble of paths is now rooted under the new item.
func AttachContext(ctx *tasks.Context, contextPath fs.Path, description string, source *tasks.Value) *tasks.Value {
	children := takePaths(ctx, source)
	if len(children) > 0 {
		ctx.Emit(ProcessingPath(&itemProcessingPath{
			item:     &PathItem{Context: &contextPath, Description: description},
			children: children,
		}))
	}
	return source
}

// AttachDescription is AttachContext without a context path.
func AttachDescription(ctx *tasks.Context, description string, source *tasks.Value) *tasks.Value {
	children := takePaths(ctx, source)
	if len(children) > 0 {
		ctx.Emit(ProcessingPath(&itemProcessingPath{
			item:     &PathItem{Description: description},
			children: children,
		}))
	}
	return source
}

// CapturedIssues is a snapshot of the issues below a value together
// with the processing paths needed to attribute each of them.
type CapturedIssues struct {
	issues []Issue
	path   *itemProcessingPath
}

// PeekIssuesWithPath captures the issues below `source` without
// consuming them.
func PeekIssuesWithPath(ctx *tasks.Context, source *tasks.Value) *CapturedIssues {
	return &CapturedIssues{
		issues: toIssues(ctx.PeekCollectibles(source, isIssue)),
		path:   &itemProcessingPath{children: peekPaths(ctx, source)},
	}
}

// TakeIssuesWithPath captures the issues below `source` and unemits
// them; they will not propagate further up.
func TakeIssuesWithPath(ctx *tasks.Context, source *tasks.Value) *CapturedIssues {
	return &CapturedIssues{
		issues: toIssues(ctx.TakeCollectibles(source, isIssue)),
		path:   &itemProcessingPath{children: takePaths(ctx, source)},
	}
}

// IsEmpty reports whether no issues were captured.
func (c *CapturedIssues) IsEmpty() bool {
	return len(c.issues) == 0
}

// Len returns the number of captured issues.
func (c *CapturedIssues) Len() int {
	return len(c.issues)
}

// Issues returns the captured issues. Order among issues emitted in
// parallel subtrees is not meaningful.
func (c *CapturedIssues) Issues() []Issue {
	return c.issues
}

// CapturedIssue pairs an issue with the shortest path from the capture
// root to it.
type CapturedIssue struct {
	Issue Issue
	Path  []*PathItem
	// HasPath is false when no processing path below the capture root
	// led to the issue.
	HasPath bool
}

// WithShortestPaths computes, for every captured issue, the shortest
// processing path from the capture root to it.
func (c *CapturedIssues) WithShortestPaths() ([]CapturedIssue, error) {
	result := make([]CapturedIssue, 0, len(c.issues))
	for _, captured := range c.issues {
		items, found, err := c.path.ShortestPath(captured)
		if err != nil {
			return nil, err
		}
		result = append(result, CapturedIssue{Issue: captured, Path: items, HasPath: found})
	}
	return result, nil
}
