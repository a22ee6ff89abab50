// Package transition defines context-transforming edges in the module
// graph: a transition rewrites the asset and the ambient contexts for
// the subtree behind an edge, letting one part of the graph be
// processed under a different environment or option set.
package transition

import (
	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/env"
	"github.com/vercel/turbopack/cli/internal/moduleoptions"
	"github.com/vercel/turbopack/cli/internal/tasks"
)

// Transition is a set of pure rewrites applied when the graph crosses
// a transition edge. ProcessSource runs before the asset is typed,
// ProcessModule after.
type Transition interface {
	ProcessSource(ctx *tasks.Context, a asset.Asset) (asset.Asset, error)
	ProcessEnvironment(environment *env.Environment) *env.Environment
	ProcessModuleOptionsContext(options *moduleoptions.OptionsContext) *moduleoptions.OptionsContext
	ProcessResolveOptionsContext(options *asset.ResolveOptionsContext) *asset.ResolveOptionsContext
	ProcessModule(ctx *tasks.Context, module asset.Asset, context asset.Context) (asset.Asset, error)
}

// Default is a no-op Transition suitable for embedding; override the
// rewrites you need.
type Default struct{}

var _ Transition = Default{}

// ProcessSource returns the asset unchanged.
func (Default) ProcessSource(ctx *tasks.Context, a asset.Asset) (asset.Asset, error) {
	return a, nil
}

// ProcessEnvironment returns the environment unchanged.
func (Default) ProcessEnvironment(environment *env.Environment) *env.Environment {
	return environment
}

// ProcessModuleOptionsContext returns the options unchanged.
func (Default) ProcessModuleOptionsContext(options *moduleoptions.OptionsContext) *moduleoptions.OptionsContext {
	return options
}

// ProcessResolveOptionsContext returns the options unchanged.
func (Default) ProcessResolveOptionsContext(options *asset.ResolveOptionsContext) *asset.ResolveOptionsContext {
	return options
}

// ProcessModule returns the module unchanged.
func (Default) ProcessModule(ctx *tasks.Context, module asset.Asset, context asset.Context) (asset.Asset, error) {
	return module, nil
}
