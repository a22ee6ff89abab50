package issue

import (
	"math"
	"sort"

	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/tasks"
)

// SourcePos is a zero-based line/column position inside an asset.
type SourcePos struct {
	Line   int
	Column int
}

// MaxSourcePos is the largest representable position, used as the end
// marker when content can't be line-indexed.
func MaxSourcePos() SourcePos {
	return SourcePos{Line: math.MaxInt32, Column: math.MaxInt32}
}

// Source locates a span inside an asset.
type Source struct {
	Asset asset.Asset
	Start SourcePos
	End   SourcePos
}

// SourceFromByteOffset resolves byte offsets to line/column positions
// using the asset's line table. When the content is not line-indexable
// the span still exists: it covers everything, so downstream consumers
// never see a missing source.
func SourceFromByteOffset(ctx *tasks.Context, a asset.Asset, start int, end int) (*Source, error) {
	content, err := a.Content(ctx)
	if err != nil {
		return nil, err
	}
	lineStarts, indexable := content.LineStarts()
	if !indexable {
		return &Source{Asset: a, Start: SourcePos{}, End: MaxSourcePos()}, nil
	}
	return &Source{
		Asset: a,
		Start: findLineAndColumn(lineStarts, start),
		End:   findLineAndColumn(lineStarts, end),
	}, nil
}

// findLineAndColumn locates the line whose start offset is the largest
// one not exceeding `offset`.
func findLineAndColumn(lineStarts []int, offset int) SourcePos {
	index := sort.SearchInts(lineStarts, offset)
	if index < len(lineStarts) && lineStarts[index] == offset {
		return SourcePos{Line: index, Column: 0}
	}
	if index == 0 {
		return SourcePos{Line: 0, Column: offset}
	}
	return SourcePos{Line: index - 1, Column: offset - lineStarts[index-1]}
}
