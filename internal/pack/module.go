package pack

import (
	"github.com/pkg/errors"
	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/moduleoptions"
	"github.com/vercel/turbopack/cli/internal/tasks"
)

// module types a source asset under a context. The computation is
// task-keyed on (source, context): the same file reached twice under
// the same context is the same module.
func module(ctx *tasks.Context, source asset.Asset, context *ModuleAssetContext) (asset.Asset, error) {
	value := ctx.Spawn("module", func(ctx *tasks.Context, args []interface{}) (interface{}, error) {
		return moduleInternal(ctx, args[0].(asset.Asset), args[1].(*ModuleAssetContext))
	}, source, context)
	result, err := value.Get(ctx)
	if err != nil {
		return nil, err
	}
	return result.(asset.Asset), nil
}

func moduleInternal(ctx *tasks.Context, source asset.Asset, context *ModuleAssetContext) (asset.Asset, error) {
	options := moduleoptions.New(source.Path().Parent(), context.moduleOptionsContext)
	moduleType := options.ModuleTypeFor(source.Path())

	switch moduleType.Kind {
	case moduleoptions.ModuleTypeEcmascript:
		return newEcmascriptModuleAsset(source, context, variantEcmascript, moduleType.Transforms, context.environment), nil
	case moduleoptions.ModuleTypeTypescript:
		return newEcmascriptModuleAsset(source, context.WithTypescriptResolvingEnabled(), variantTypescript, moduleType.Transforms, context.environment), nil
	case moduleoptions.ModuleTypeTypescriptDeclaration:
		return newEcmascriptModuleAsset(source, context.WithTypescriptResolvingEnabled(), variantTypescriptDeclaration, moduleType.Transforms, context.environment), nil
	case moduleoptions.ModuleTypeJSON:
		return newJSONModuleAsset(source), nil
	case moduleoptions.ModuleTypeCSS:
		return newCSSModuleAsset(source, context), nil
	case moduleoptions.ModuleTypeStatic:
		return newStaticModuleAsset(source, context), nil
	case moduleoptions.ModuleTypeRaw:
		return source, nil
	case moduleoptions.ModuleTypeCustom:
		return nil, errors.Errorf("custom module type matched %v; custom module types are not implemented", source.Path().ToString())
	}
	return nil, errors.Errorf("unexpected module type %v", moduleType.Kind)
}

// jsonModuleAsset wraps a JSON source. Its content is the source
// content and it references nothing.
type jsonModuleAsset struct {
	source asset.Asset
}

var _ asset.Asset = (*jsonModuleAsset)(nil)

func newJSONModuleAsset(source asset.Asset) *jsonModuleAsset {
	return &jsonModuleAsset{source: source}
}

func (m *jsonModuleAsset) Path() fs.Path { return m.source.Path() }

func (m *jsonModuleAsset) TaskKey() string {
	return "jsonModule(" + m.source.TaskKey() + ")"
}

func (m *jsonModuleAsset) Content(ctx *tasks.Context) (*fs.FileContent, error) {
	return m.source.Content(ctx)
}

func (m *jsonModuleAsset) References(ctx *tasks.Context) ([]asset.Reference, error) {
	return nil, nil
}

// cssModuleAsset wraps a CSS source. The CSS transform pipeline is
// external; the graph core treats the module as a leaf.
type cssModuleAsset struct {
	source  asset.Asset
	context *ModuleAssetContext
}

var _ asset.Asset = (*cssModuleAsset)(nil)

func newCSSModuleAsset(source asset.Asset, context *ModuleAssetContext) *cssModuleAsset {
	return &cssModuleAsset{source: source, context: context}
}

func (m *cssModuleAsset) Path() fs.Path { return m.source.Path() }

func (m *cssModuleAsset) TaskKey() string {
	return "cssModule(" + m.source.TaskKey() + ")"
}

func (m *cssModuleAsset) Content(ctx *tasks.Context) (*fs.FileContent, error) {
	return m.source.Content(ctx)
}

func (m *cssModuleAsset) References(ctx *tasks.Context) ([]asset.Reference, error) {
	return nil, nil
}

// staticModuleAsset wraps an asset that is copied through unchanged.
type staticModuleAsset struct {
	source  asset.Asset
	context *ModuleAssetContext
}

var _ asset.Asset = (*staticModuleAsset)(nil)

func newStaticModuleAsset(source asset.Asset, context *ModuleAssetContext) *staticModuleAsset {
	return &staticModuleAsset{source: source, context: context}
}

func (m *staticModuleAsset) Path() fs.Path { return m.source.Path() }

func (m *staticModuleAsset) TaskKey() string {
	return "staticModule(" + m.source.TaskKey() + ")"
}

func (m *staticModuleAsset) Content(ctx *tasks.Context) (*fs.FileContent, error) {
	return m.source.Content(ctx)
}

func (m *staticModuleAsset) References(ctx *tasks.Context) ([]asset.Reference, error) {
	return nil, nil
}
