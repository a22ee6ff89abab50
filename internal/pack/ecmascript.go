package pack

import (
	gopath "path"
	"regexp"
	"strings"

	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/env"
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/resolve"
	"github.com/vercel/turbopack/cli/internal/tasks"
	"github.com/vercel/turbopack/cli/internal/turbopath"
)

type ecmascriptVariant int

const (
	variantEcmascript ecmascriptVariant = iota
	variantTypescript
	variantTypescriptDeclaration
)

func (v ecmascriptVariant) String() string {
	switch v {
	case variantEcmascript:
		return "ecmascript"
	case variantTypescript:
		return "typescript"
	case variantTypescriptDeclaration:
		return "typescript declaration"
	}
	return "unknown"
}

// ecmascriptModuleAsset is a JS/TS source typed as a module. It
// carries its transform chain and environment; the transforms
// themselves run in the external pipeline, the graph core only needs
// the outgoing references.
type ecmascriptModuleAsset struct {
	source      asset.Asset
	context     *ModuleAssetContext
	variant     ecmascriptVariant
	transforms  []string
	environment *env.Environment
}

var _ asset.Asset = (*ecmascriptModuleAsset)(nil)

func newEcmascriptModuleAsset(source asset.Asset, context *ModuleAssetContext, variant ecmascriptVariant, transforms []string, environment *env.Environment) *ecmascriptModuleAsset {
	return &ecmascriptModuleAsset{
		source:      source,
		context:     context,
		variant:     variant,
		transforms:  transforms,
		environment: environment,
	}
}

func (m *ecmascriptModuleAsset) Path() fs.Path { return m.source.Path() }

func (m *ecmascriptModuleAsset) TaskKey() string {
	return "ecmascriptModule(" + m.source.TaskKey() + "; " + m.variant.String() +
		"; " + strings.Join(m.transforms, ",") + "; " + m.environment.TaskKey() +
		"; " + m.context.TaskKey() + ")"
}

func (m *ecmascriptModuleAsset) Content(ctx *tasks.Context) (*fs.FileContent, error) {
	return m.source.Content(ctx)
}

// References scans the source for import specifiers and wraps each in
// a reference that resolves through this module's context.
func (m *ecmascriptModuleAsset) References(ctx *tasks.Context) ([]asset.Reference, error) {
	content, err := m.source.Content(ctx)
	if err != nil {
		return nil, err
	}
	var references []asset.Reference
	for _, scanned := range scanImports(content) {
		kind := asset.ModuleReference
		if scanned.typeOnly {
			kind = asset.TypeReference
		}
		references = append(references, &ecmascriptModuleReference{
			context: m.context,
			origin:  m.source.Path().Parent(),
			request: asset.NewRequest(scanned.specifier),
			kind:    kind,
		})
	}
	return references, nil
}

type scannedImport struct {
	specifier string
	typeOnly  bool
}

var (
	importTypeRe = regexp.MustCompile(`(?m)^\s*import\s+type\s+[^'"]*from\s*['"]([^'"]+)['"]`)
	importRe     = regexp.MustCompile(`(?m)^\s*(?:import|export)\s+[^'"]*?from\s*['"]([^'"]+)['"]`)
	sideEffectRe = regexp.MustCompile(`(?m)^\s*import\s*['"]([^'"]+)['"]`)
	requireRe    = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
)

// scanImports is a line-oriented specifier scan, not a parser. The
// transform pipelines own real parsing; the graph only needs the edge
// list, and a scan keeps the core independent of any parser.
func scanImports(content *fs.FileContent) []scannedImport {
	_, indexable := content.LineStarts()
	if !indexable {
		return nil
	}
	source := string(content.Bytes())

	var imports []scannedImport
	seen := map[string]bool{}
	add := func(specifier string, typeOnly bool) {
		if specifier == "" || seen[specifier] {
			return
		}
		seen[specifier] = true
		imports = append(imports, scannedImport{specifier: specifier, typeOnly: typeOnly})
	}

	for _, match := range importTypeRe.FindAllStringSubmatch(source, -1) {
		add(match[1], true)
	}
	for _, match := range importRe.FindAllStringSubmatch(source, -1) {
		add(match[1], false)
	}
	for _, match := range sideEffectRe.FindAllStringSubmatch(source, -1) {
		add(match[1], false)
	}
	for _, match := range requireRe.FindAllStringSubmatch(source, -1) {
		add(match[1], false)
	}
	return imports
}

// ecmascriptModuleReference is an import edge from a module, resolved
// lazily through the context the module was typed under.
type ecmascriptModuleReference struct {
	context *ModuleAssetContext
	origin  fs.Path
	request asset.Request
	kind    asset.ReferenceKind
}

var _ asset.Reference = (*ecmascriptModuleReference)(nil)

func (r *ecmascriptModuleReference) Kind() asset.ReferenceKind { return r.kind }

func (r *ecmascriptModuleReference) Description() string {
	return "import " + r.request.Specifier
}

func (r *ecmascriptModuleReference) Resolve(ctx *tasks.Context) (*asset.ResolveResult, error) {
	return r.context.ResolveAsset(ctx, r.origin, r.request, resolve.Options(r.origin, r.context.resolveOptionsContext))
}

// typescriptTypesReference is the types lookup attached to every
// resolution under a typescript-enabled context: the same request,
// probed against `.d.ts` declarations. A missing declaration is not a
// diagnostic; the edge just resolves to nothing.
type typescriptTypesReference struct {
	context *ModuleAssetContext
	origin  fs.Path
	request asset.Request
}

var _ asset.Reference = (*typescriptTypesReference)(nil)

func newTypescriptTypesReference(context *ModuleAssetContext, origin fs.Path, request asset.Request) *typescriptTypesReference {
	return &typescriptTypesReference{context: context, origin: origin, request: request}
}

func (r *typescriptTypesReference) Kind() asset.ReferenceKind { return asset.ModuleReference }

func (r *typescriptTypesReference) Description() string {
	return "typescript types for " + r.request.Specifier
}

func (r *typescriptTypesReference) Resolve(ctx *tasks.Context) (*asset.ResolveResult, error) {
	if !r.request.IsRelative() {
		return &asset.ResolveResult{}, nil
	}
	value := ctx.Spawn("typescriptTypes", func(ctx *tasks.Context, args []interface{}) (interface{}, error) {
		context := args[0].(*ModuleAssetContext)
		origin := args[1].(fs.Path)
		request := args[2].(asset.Request)
		base := gopath.Join(origin.Path().ToString(), request.Specifier)
		target := fs.NewPath(origin.FileSystem(), turbopath.AnchoredUnixPathFromUpstream(base+".d.ts"))
		if !target.Exists() {
			return &asset.ResolveResult{}, nil
		}
		return context.ProcessResolveResult(ctx, &asset.ResolveResult{
			Assets: []asset.Asset{asset.NewSource(target)},
		})
	}, r.context, r.origin, r.request)
	result, err := value.Get(ctx)
	if err != nil {
		return nil, err
	}
	return result.(*asset.ResolveResult), nil
}
