package issue

import (
	"github.com/pkg/errors"
	"github.com/vercel/turbopack/cli/internal/fs"
	"golang.org/x/sync/errgroup"
)

// PathItem is one step of a processing path: an optional context path
// and a description of what was happening there.
type PathItem struct {
	Context     *fs.Path
	Description string
}

// String renders "<path> (<description>)" when a context is present
// and the bare description otherwise.
func (i *PathItem) String() string {
	if i.Context != nil {
		return i.Context.ToString() + " (" + i.Description + ")"
	}
	return i.Description
}

// ProcessingPath explains how a root reached an issue. ShortestPath
// returns the minimum-length, then lexicographically-minimum item
// sequence leading to the issue, or found=false when this subtree
// never raised it.
type ProcessingPath interface {
	ShortestPath(issue Issue) (items []*PathItem, found bool, err error)
}

// rootProcessingPath is the trivial attribution emitted alongside
// every issue: the empty path, for exactly that issue.
type rootProcessingPath struct {
	issue Issue
}

func (p *rootProcessingPath) ShortestPath(issue Issue) ([]*PathItem, bool, error) {
	if p.issue == issue {
		return []*PathItem{}, true, nil
	}
	return nil, false, nil
}

// itemProcessingPath wraps child paths behind an optional head item.
type itemProcessingPath struct {
	item     *PathItem
	children []ProcessingPath
}

// ShortestPath evaluates all children in parallel and folds their
// answers down to a single best path.
func (p *itemProcessingPath) ShortestPath(issue Issue) ([]*PathItem, bool, error) {
	if len(p.children) == 0 {
		return nil, false, errors.New("path can't be empty")
	}

	type answer struct {
		items []*PathItem
		found bool
	}
	answers := make([]answer, len(p.children))
	var group errgroup.Group
	for index, child := range p.children {
		index, child := index, child
		group.Go(func() error {
			items, found, err := child.ShortestPath(issue)
			if err != nil {
				return err
			}
			answers[index] = answer{items: items, found: found}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, false, err
	}

	var shortest []*PathItem
	found := false
	for _, a := range answers {
		if !a.found {
			continue
		}
		if !found || pathLess(a.items, shortest) {
			shortest = a.items
			found = true
		}
	}
	if !found {
		return nil, false, nil
	}
	if p.item != nil {
		withHead := make([]*PathItem, 0, len(shortest)+1)
		withHead = append(withHead, p.item)
		withHead = append(withHead, shortest...)
		return withHead, true, nil
	}
	return shortest, true, nil
}

// pathLess orders candidate paths: shorter length wins; on equal
// length the first elementwise difference of the items' string forms
// decides. A path that is a string-form prefix of another compares
// equal, and equal is not less.
func pathLess(a []*PathItem, b []*PathItem) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for index := range a {
		left, right := a[index].String(), b[index].String()
		if left == right {
			continue
		}
		return left < right
	}
	return false
}
