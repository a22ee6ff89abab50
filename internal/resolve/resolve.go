// Package resolve turns import requests into assets. It implements
// the relative/extension-probing part of resolution; package-manager
// aware resolution of bare specifiers is a separate concern and is
// reported as unresolvable here.
package resolve

import (
	gopath "path"
	"strings"

	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/issue"
	"github.com/vercel/turbopack/cli/internal/tasks"
	"github.com/vercel/turbopack/cli/internal/turbopath"
)

// Options computes concrete resolve options for a context path. The
// context path is accepted for parity with directory-scoped
// configuration (tsconfig lookups and the like) even though the
// defaults don't depend on it.
func Options(contextPath fs.Path, optionsContext *asset.ResolveOptionsContext) *asset.ResolveOptions {
	var extensions []string
	if optionsContext != nil && optionsContext.EnableTypescript {
		extensions = append(extensions, ".ts", ".tsx", ".d.ts")
	}
	extensions = append(extensions, ".js", ".mjs", ".cjs", ".jsx", ".json")
	if optionsContext != nil {
		extensions = append(extensions, optionsContext.ExtraExtensions...)
	}
	return &asset.ResolveOptions{
		Extensions:       extensions,
		EnableTypescript: optionsContext != nil && optionsContext.EnableTypescript,
	}
}

// Issue is the diagnostic for a request that could not be resolved.
type Issue struct {
	issue.Base
	Request asset.Request
}

// Category implements issue.Issue.Category.
func (i *Issue) Category() string { return "resolve" }

// Resolve resolves a request against a context directory. An
// unresolvable request is not an error: it degrades to an empty result
// and raises an Error issue, and the build continues.
func Resolve(ctx *tasks.Context, contextPath fs.Path, request asset.Request, options *asset.ResolveOptions) (*asset.ResolveResult, error) {
	value := ctx.Spawn("resolve", func(ctx *tasks.Context, args []interface{}) (interface{}, error) {
		return resolveInternal(ctx, args[0].(fs.Path), args[1].(asset.Request), args[2].(*asset.ResolveOptions))
	}, contextPath, request, options)
	result, err := value.Get(ctx)
	if err != nil {
		return nil, err
	}
	return result.(*asset.ResolveResult), nil
}

func resolveInternal(ctx *tasks.Context, contextPath fs.Path, request asset.Request, options *asset.ResolveOptions) (*asset.ResolveResult, error) {
	if !request.IsRelative() {
		// Bare specifiers need a package resolver; that integration
		// lives outside the graph core.
		emitUnresolvable(ctx, contextPath, request, "bare specifiers are not resolvable here")
		return &asset.ResolveResult{}, nil
	}

	for _, candidate := range candidates(contextPath, request, options) {
		if escapesRoot(candidate) {
			continue
		}
		target := fs.NewPath(contextPath.FileSystem(), candidate)
		if target.Exists() {
			return &asset.ResolveResult{Assets: []asset.Asset{asset.NewSource(target)}}, nil
		}
	}

	emitUnresolvable(ctx, contextPath, request, "no matching file")
	return &asset.ResolveResult{}, nil
}

// candidates lists the paths probed for a relative request: the
// request itself, then the request with each configured extension,
// then an index file per extension.
func candidates(contextPath fs.Path, request asset.Request, options *asset.ResolveOptions) []turbopath.AnchoredUnixPath {
	base := gopath.Join(contextPath.Path().ToString(), request.Specifier)
	probes := []turbopath.AnchoredUnixPath{turbopath.AnchoredUnixPathFromUpstream(base)}
	for _, extension := range options.Extensions {
		probes = append(probes, turbopath.AnchoredUnixPathFromUpstream(base+extension))
	}
	for _, extension := range options.Extensions {
		probes = append(probes, turbopath.AnchoredUnixPathFromUpstream(gopath.Join(base, "index"+extension)))
	}
	return probes
}

// escapesRoot catches requests that climb above the filesystem root.
func escapesRoot(path turbopath.AnchoredUnixPath) bool {
	return path.ToString() == ".." || strings.HasPrefix(path.ToString(), "../")
}

func emitUnresolvable(ctx *tasks.Context, contextPath fs.Path, request asset.Request, reason string) {
	issue.Emit(ctx, &Issue{
		Base: issue.NewBase(
			contextPath,
			"Module not found: "+request.Specifier,
			"could not resolve "+request.Specifier+" from "+contextPath.ToString()+": "+reason,
		),
		Request: request,
	})
}
