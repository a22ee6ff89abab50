// Package pack is the module-graph processor: it types raw assets
// into modules under a ModuleAssetContext, resolves their references
// (possibly across transitions), and emits the resulting graph to an
// output directory.
package pack

import (
	"sort"
	"strings"

	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/env"
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/issue"
	"github.com/vercel/turbopack/cli/internal/moduleoptions"
	"github.com/vercel/turbopack/cli/internal/resolve"
	"github.com/vercel/turbopack/cli/internal/tasks"
	"github.com/vercel/turbopack/cli/internal/transition"
)

// ModuleAssetContext is the concrete AssetContext of the bundler. It
// is an immutable record; the With* methods return modified copies.
type ModuleAssetContext struct {
	transitions           map[string]transition.Transition
	contextPath           fs.Path
	environment           *env.Environment
	moduleOptionsContext  *moduleoptions.OptionsContext
	resolveOptionsContext *asset.ResolveOptionsContext
	transition            transition.Transition
	transitionName        string
}

var _ asset.Context = (*ModuleAssetContext)(nil)

// NewModuleAssetContext builds a context with no transition set.
func NewModuleAssetContext(
	transitions map[string]transition.Transition,
	contextPath fs.Path,
	environment *env.Environment,
	moduleOptionsContext *moduleoptions.OptionsContext,
	resolveOptionsContext *asset.ResolveOptionsContext,
) *ModuleAssetContext {
	return &ModuleAssetContext{
		transitions:           transitions,
		contextPath:           contextPath,
		environment:           environment,
		moduleOptionsContext:  moduleOptionsContext,
		resolveOptionsContext: resolveOptionsContext,
	}
}

func newTransitionContext(base *ModuleAssetContext, name string, t transition.Transition) *ModuleAssetContext {
	return &ModuleAssetContext{
		transitions:           base.transitions,
		contextPath:           base.contextPath,
		environment:           base.environment,
		moduleOptionsContext:  base.moduleOptionsContext,
		resolveOptionsContext: base.resolveOptionsContext,
		transition:            t,
		transitionName:        name,
	}
}

// TaskKey implements tasks.Keyable. Contexts are value-typed: two
// contexts with the same fields key identically.
func (c *ModuleAssetContext) TaskKey() string {
	names := make([]string, 0, len(c.transitions))
	for name := range c.transitions {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := []string{
		strings.Join(names, ","),
		c.contextPath.TaskKey(),
		c.environment.TaskKey(),
		c.moduleOptionsContext.TaskKey(),
		c.resolveOptionsContext.TaskKey(),
		"transition:" + c.transitionName,
	}
	return "moduleAssetContext(" + strings.Join(parts, "; ") + ")"
}

// ContextPath implements asset.Context.
func (c *ModuleAssetContext) ContextPath() fs.Path { return c.contextPath }

// Environment implements asset.Context.
func (c *ModuleAssetContext) Environment() *env.Environment { return c.environment }

// ModuleOptionsContext exposes the module-options knobs for
// transitions that want to derive a modified copy.
func (c *ModuleAssetContext) ModuleOptionsContext() *moduleoptions.OptionsContext {
	return c.moduleOptionsContext
}

// IsTypescriptResolvingEnabled reports whether resolutions under this
// context probe TypeScript sources and types.
func (c *ModuleAssetContext) IsTypescriptResolvingEnabled() bool {
	return c.resolveOptionsContext != nil && c.resolveOptionsContext.EnableTypescript
}

// WithTypescriptResolvingEnabled returns a context whose resolutions
// see TypeScript. It is idempotent: an already-enabled context returns
// itself.
func (c *ModuleAssetContext) WithTypescriptResolvingEnabled() *ModuleAssetContext {
	if c.IsTypescriptResolvingEnabled() {
		return c
	}
	roc := c.resolveOptionsContext
	if roc == nil {
		roc = &asset.ResolveOptionsContext{}
	}
	return NewModuleAssetContext(
		c.transitions,
		c.contextPath,
		c.environment,
		c.moduleOptionsContext,
		roc.WithTypescriptEnabled(),
	)
}

// ResolveOptions implements asset.Context.
func (c *ModuleAssetContext) ResolveOptions() *asset.ResolveOptions {
	return resolve.Options(c.contextPath, c.resolveOptionsContext)
}

// ResolveAsset implements asset.Context: resolve the request, process
// every resulting asset into a module, and, when typescript resolving
// is enabled, attach the types lookup edge for the same request.
func (c *ModuleAssetContext) ResolveAsset(ctx *tasks.Context, contextPath fs.Path, request asset.Request, options *asset.ResolveOptions) (*asset.ResolveResult, error) {
	result, err := resolve.Resolve(ctx, contextPath, request, options)
	if err != nil {
		return nil, err
	}
	result, err = c.ProcessResolveResult(ctx, result)
	if err != nil {
		return nil, err
	}

	if c.IsTypescriptResolvingEnabled() {
		typesContext := NewModuleAssetContext(
			c.transitions,
			contextPath,
			c.environment,
			c.moduleOptionsContext,
			c.resolveOptionsContext,
		)
		result.AddReference(newTypescriptTypesReference(typesContext, contextPath, request))
	}

	return result, nil
}

// ProcessResolveResult implements asset.Context: every asset in the
// result becomes a module, informational references stay as they are.
func (c *ModuleAssetContext) ProcessResolveResult(ctx *tasks.Context, result *asset.ResolveResult) (*asset.ResolveResult, error) {
	return result.Map(func(a asset.Asset) (asset.Asset, error) {
		return c.Process(ctx, a)
	})
}

// Process implements asset.Context, the heart of the graph walk. A
// transitioned context first rewrites the source and the ambient
// contexts, then types the asset under a fresh context anchored at the
// rewritten asset's directory. Transitions never chain implicitly: the
// fresh context carries no transition.
func (c *ModuleAssetContext) Process(ctx *tasks.Context, a asset.Asset) (asset.Asset, error) {
	if c.transition != nil {
		processed, err := c.transition.ProcessSource(ctx, a)
		if err != nil {
			return nil, err
		}
		environment := c.transition.ProcessEnvironment(c.environment)
		moduleOptionsContext := c.transition.ProcessModuleOptionsContext(c.moduleOptionsContext)
		resolveOptionsContext := c.transition.ProcessResolveOptionsContext(c.resolveOptionsContext)
		processedContext := NewModuleAssetContext(
			c.transitions,
			processed.Path().Parent(),
			environment,
			moduleOptionsContext,
			resolveOptionsContext,
		)
		m, err := module(ctx, processed, processedContext)
		if err != nil {
			return nil, err
		}
		return c.transition.ProcessModule(ctx, m, processedContext)
	}

	processedContext := NewModuleAssetContext(
		c.transitions,
		a.Path().Parent(),
		c.environment,
		c.moduleOptionsContext,
		c.resolveOptionsContext,
	)
	return module(ctx, a, processedContext)
}

// WithContextPath implements asset.Context.
func (c *ModuleAssetContext) WithContextPath(path fs.Path) asset.Context {
	return NewModuleAssetContext(c.transitions, path, c.environment, c.moduleOptionsContext, c.resolveOptionsContext)
}

// WithEnvironment implements asset.Context.
func (c *ModuleAssetContext) WithEnvironment(environment *env.Environment) asset.Context {
	return NewModuleAssetContext(c.transitions, c.contextPath, environment, c.moduleOptionsContext, c.resolveOptionsContext)
}

// WithTransition implements asset.Context. An unknown transition name
// raises a Warning and continues without a transition.
func (c *ModuleAssetContext) WithTransition(ctx *tasks.Context, name string) asset.Context {
	if t, ok := c.transitions[name]; ok {
		return newTransitionContext(c, name, t)
	}
	unknown := &unknownTransitionIssue{
		Base: issue.NewBase(
			c.contextPath,
			"Unknown transition: "+name,
			"the transition "+name+" is not registered; continuing without a transition",
		),
	}
	unknown.IssueSeverity = issue.Warning
	issue.Emit(ctx, unknown)
	return NewModuleAssetContext(c.transitions, c.contextPath, c.environment, c.moduleOptionsContext, c.resolveOptionsContext)
}

type unknownTransitionIssue struct {
	issue.Base
}

// Category implements issue.Issue.Category.
func (i *unknownTransitionIssue) Category() string { return "transition" }
