// Package asset holds the contracts the module graph is built from:
// assets (content plus outgoing references), references, resolve
// results, and the AssetContext capability that types assets and
// resolves their imports.
package asset

import (
	"github.com/vercel/turbopack/cli/internal/env"
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/tasks"
)

// Asset is a source or synthesized file participating in the graph.
type Asset interface {
	tasks.Keyable
	Path() fs.Path
	Content(ctx *tasks.Context) (*fs.FileContent, error)
	References(ctx *tasks.Context) ([]Reference, error)
}

// ReferenceKind distinguishes module-producing edges from type-only
// edges (e.g. a TS `/// <reference types>` directive).
type ReferenceKind int

// The reference kinds.
const (
	ModuleReference ReferenceKind = iota
	TypeReference
)

// Reference is an outgoing edge from a module. It is resolved lazily
// through the context that created it.
type Reference interface {
	Kind() ReferenceKind
	Description() string
	Resolve(ctx *tasks.Context) (*ResolveResult, error)
}

// ResolveResult is the outcome of resolving a request: zero or more
// assets, plus any extra references discovered while resolving (a
// types lookup, a source map pointer). A result with no assets is
// unresolvable.
type ResolveResult struct {
	Assets     []Asset
	References []Reference
}

// Unresolvable reports whether resolution produced no assets.
func (r *ResolveResult) Unresolvable() bool {
	return len(r.Assets) == 0
}

// AddReference attaches an extra edge to the result.
func (r *ResolveResult) AddReference(reference Reference) {
	r.References = append(r.References, reference)
}

// Map applies f to each asset in the result, leaving informational
// references unchanged.
func (r *ResolveResult) Map(f func(Asset) (Asset, error)) (*ResolveResult, error) {
	mapped := &ResolveResult{References: r.References}
	for _, a := range r.Assets {
		processed, err := f(a)
		if err != nil {
			return nil, err
		}
		mapped.Assets = append(mapped.Assets, processed)
	}
	return mapped, nil
}

// AllReferencedAssets resolves the module-producing references of `a`
// and returns the assets they point at. References discovered while
// resolving (the types lookup edge, for one) are followed as well;
// type-only references are skipped.
func AllReferencedAssets(ctx *tasks.Context, a Asset) ([]Asset, error) {
	references, err := a.References(ctx)
	if err != nil {
		return nil, err
	}
	var assets []Asset
	queue := append([]Reference{}, references...)
	for len(queue) > 0 {
		reference := queue[0]
		queue = queue[1:]
		if reference.Kind() != ModuleReference {
			continue
		}
		result, err := reference.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		assets = append(assets, result.Assets...)
		queue = append(queue, result.References...)
	}
	return assets, nil
}

// Context is the ambient configuration under which an asset is typed
// and its imports resolved.
type Context interface {
	ContextPath() fs.Path
	Environment() *env.Environment

	ResolveOptions() *ResolveOptions
	ResolveAsset(ctx *tasks.Context, contextPath fs.Path, request Request, options *ResolveOptions) (*ResolveResult, error)
	ProcessResolveResult(ctx *tasks.Context, result *ResolveResult) (*ResolveResult, error)
	Process(ctx *tasks.Context, a Asset) (Asset, error)

	WithContextPath(path fs.Path) Context
	WithEnvironment(environment *env.Environment) Context
	WithTransition(ctx *tasks.Context, name string) Context
}
