package asset

import (
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/tasks"
)

// SourceAsset is a plain file: its content comes straight from the
// filesystem and it has no outgoing references until a module type
// gives it some.
type SourceAsset struct {
	path fs.Path
}

var _ Asset = (*SourceAsset)(nil)

// NewSource creates the asset for a file on disk (or in a virtual
// filesystem).
func NewSource(path fs.Path) *SourceAsset {
	return &SourceAsset{path: path}
}

// Path implements Asset.Path.
func (s *SourceAsset) Path() fs.Path { return s.path }

// TaskKey implements tasks.Keyable.
func (s *SourceAsset) TaskKey() string {
	return "source" + s.path.TaskKey()
}

// Content implements Asset.Content by reading the file.
func (s *SourceAsset) Content(ctx *tasks.Context) (*fs.FileContent, error) {
	value := ctx.Spawn("SourceAsset.content", func(ctx *tasks.Context, args []interface{}) (interface{}, error) {
		return args[0].(*SourceAsset).path.ReadContent()
	}, s)
	content, err := value.Get(ctx)
	if err != nil {
		return nil, err
	}
	return content.(*fs.FileContent), nil
}

// References implements Asset.References. Raw files reference nothing.
func (s *SourceAsset) References(ctx *tasks.Context) ([]Reference, error) {
	return nil, nil
}
