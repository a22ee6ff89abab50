package pack

import (
	"bytes"
	gocontext "context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/env"
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/issue"
	"github.com/vercel/turbopack/cli/internal/moduleoptions"
	"github.com/vercel/turbopack/cli/internal/tasks"
	"github.com/vercel/turbopack/cli/internal/transition"
	"github.com/vercel/turbopack/cli/internal/turbopath"
)

// recordingFileSystem wraps an in-memory filesystem and records every
// write, so tests can observe what emit actually touched.
type recordingFileSystem struct {
	inner *fs.InMemoryFileSystem

	mu     sync.Mutex
	writes []string
}

var _ fs.FileSystem = (*recordingFileSystem)(nil)

func newRecordingFileSystem(t *testing.T, files map[string]string) *recordingFileSystem {
	t.Helper()
	inner := fs.NewInMemoryFileSystem("project")
	for name, content := range files {
		err := inner.WriteFile(turbopath.AnchoredUnixPathFromUpstream(name), fs.NewFileContentString(content))
		require.NoError(t, err)
	}
	return &recordingFileSystem{inner: inner}
}

func (r *recordingFileSystem) Name() string { return r.inner.Name() }

func (r *recordingFileSystem) ReadFile(path turbopath.AnchoredUnixPath) (*fs.FileContent, error) {
	return r.inner.ReadFile(path)
}

func (r *recordingFileSystem) WriteFile(path turbopath.AnchoredUnixPath, content *fs.FileContent) error {
	r.mu.Lock()
	r.writes = append(r.writes, path.ToString())
	r.mu.Unlock()
	return r.inner.WriteFile(path, content)
}

func (r *recordingFileSystem) Exists(path turbopath.AnchoredUnixPath) bool {
	return r.inner.Exists(path)
}

func (r *recordingFileSystem) writtenPaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := append([]string{}, r.writes...)
	sort.Strings(sorted)
	return sorted
}

func testContext(filesystem fs.FileSystem, transitions map[string]transition.Transition) *ModuleAssetContext {
	if transitions == nil {
		transitions = map[string]transition.Transition{}
	}
	return NewModuleAssetContext(
		transitions,
		fs.NewPath(filesystem, ""),
		env.NewEnvironment(env.TargetNode),
		&moduleoptions.OptionsContext{EnableTypescript: true},
		&asset.ResolveOptionsContext{EnableTypescript: true},
	)
}

func newRunContext() *tasks.Context {
	return tasks.NewRun(gocontext.Background()).Context()
}

func assetPaths(assets []asset.Asset) []string {
	paths := make([]string, len(assets))
	for index, a := range assets {
		paths[index] = a.Path().ToString()
	}
	sort.Strings(paths)
	return paths
}

func TestEmptyJSONModule(t *testing.T) {
	filesystem := newRecordingFileSystem(t, map[string]string{"a.json": "{}"})
	ctx := newRunContext()
	context := testContext(filesystem, nil)

	module, err := context.Process(ctx, asset.NewSource(fs.NewPath(filesystem, "a.json")))
	require.NoError(t, err)
	assert.IsType(t, &jsonModuleAsset{}, module)

	references, err := module.References(ctx)
	require.NoError(t, err)
	assert.Empty(t, references)

	outputDir := fs.NewPath(filesystem, "out")
	require.NoError(t, EmitWithCompletion(ctx, module, outputDir))
	assert.Empty(t, filesystem.writtenPaths(), "nothing lies inside the output directory")
}

func TestTypescriptImportChain(t *testing.T) {
	filesystem := newRecordingFileSystem(t, map[string]string{
		"app.ts":    "import { util } from \"./util\";\n",
		"util.ts":   "export const util = 1;\n",
		"util.d.ts": "export declare const util: number;\n",
	})
	ctx := newRunContext()
	context := testContext(filesystem, nil)

	module, err := context.Process(ctx, asset.NewSource(fs.NewPath(filesystem, "app.ts")))
	require.NoError(t, err)
	typed, ok := module.(*ecmascriptModuleAsset)
	require.True(t, ok)
	assert.Equal(t, variantTypescript, typed.variant)
	assert.True(t, typed.context.IsTypescriptResolvingEnabled())

	referenced, err := asset.AllReferencedAssets(ctx, module)
	require.NoError(t, err)
	assert.Equal(t, []string{"/util.d.ts", "/util.ts"}, assetPaths(referenced),
		"the module edge and the types edge both join the graph")
}

func TestModuleIsMemoized(t *testing.T) {
	filesystem := newRecordingFileSystem(t, map[string]string{"a.json": "{}"})
	ctx := newRunContext()
	context := testContext(filesystem, nil)
	source := asset.NewSource(fs.NewPath(filesystem, "a.json"))

	first, err := context.Process(ctx, source)
	require.NoError(t, err)
	second, err := context.Process(ctx, source)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestTypescriptResolvingIdempotence(t *testing.T) {
	filesystem := newRecordingFileSystem(t, nil)
	disabled := NewModuleAssetContext(
		map[string]transition.Transition{},
		fs.NewPath(filesystem, ""),
		env.NewEnvironment(env.TargetNode),
		&moduleoptions.OptionsContext{},
		&asset.ResolveOptionsContext{},
	)
	assert.False(t, disabled.IsTypescriptResolvingEnabled())

	enabled := disabled.WithTypescriptResolvingEnabled()
	assert.True(t, enabled.IsTypescriptResolvingEnabled())
	assert.NotSame(t, disabled, enabled)
	assert.Same(t, enabled, enabled.WithTypescriptResolvingEnabled(), "applying twice equals once")
}

// clientTransition relocates sources under client/ and retargets the
// environment at the browser.
type clientTransition struct {
	transition.Default
	filesystem fs.FileSystem
}

func (c *clientTransition) ProcessSource(ctx *tasks.Context, a asset.Asset) (asset.Asset, error) {
	relocated := turbopath.AnchoredUnixPathFromUpstream("client").Join(
		turbopath.RelativeUnixPathFromUpstream(a.Path().Path().ToString()))
	return asset.NewSource(fs.NewPath(c.filesystem, relocated)), nil
}

func (c *clientTransition) ProcessEnvironment(environment *env.Environment) *env.Environment {
	return env.NewEnvironment(env.TargetBrowser)
}

func TestTransitionIsolation(t *testing.T) {
	filesystem := newRecordingFileSystem(t, map[string]string{"app.js": "export {};\n"})
	transitions := map[string]transition.Transition{
		"client": &clientTransition{filesystem: filesystem},
	}
	ctx := newRunContext()
	base := testContext(filesystem, transitions)

	transitioned, ok := base.WithTransition(ctx, "client").(*ModuleAssetContext)
	require.True(t, ok)
	require.NotNil(t, transitioned.transition)

	module, err := transitioned.Process(ctx, asset.NewSource(fs.NewPath(filesystem, "app.js")))
	require.NoError(t, err)
	typed, ok := module.(*ecmascriptModuleAsset)
	require.True(t, ok)

	assert.Equal(t, "/client/app.js", typed.Path().ToString())
	assert.Equal(t, "/client", typed.context.contextPath.ToString(),
		"the produced context is anchored at the rewritten asset's directory")
	assert.Nil(t, typed.context.transition, "transitions don't chain implicitly")
	assert.Equal(t, env.TargetBrowser, typed.environment.Target)
}

func TestUnknownTransitionWarnsAndContinues(t *testing.T) {
	filesystem := newRecordingFileSystem(t, nil)
	ctx := newRunContext()
	base := testContext(filesystem, nil)

	value := ctx.Spawn("test.withTransition", func(ctx *tasks.Context, args []interface{}) (interface{}, error) {
		return base.WithTransition(ctx, "does-not-exist"), nil
	})
	result, err := value.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, result.(*ModuleAssetContext).transition)

	captured := issue.TakeIssuesWithPath(ctx, value)
	require.Equal(t, 1, captured.Len())
	raised := captured.Issues()[0]
	assert.Equal(t, issue.Warning, raised.Severity())
	assert.Equal(t, "transition", raised.Category())
}

func TestCustomModuleTypeIsAnError(t *testing.T) {
	filesystem := newRecordingFileSystem(t, map[string]string{"widget.custom": ""})
	ctx := newRunContext()
	custom := moduleoptions.MustRule("**.custom", map[moduleoptions.EffectKey]moduleoptions.Effect{
		moduleoptions.EffectKeyModuleType: {ModuleType: &moduleoptions.ModuleType{Kind: moduleoptions.ModuleTypeCustom}},
	})
	context := NewModuleAssetContext(
		map[string]transition.Transition{},
		fs.NewPath(filesystem, ""),
		env.NewEnvironment(env.TargetNode),
		&moduleoptions.OptionsContext{ExtraRules: []moduleoptions.Rule{custom}},
		&asset.ResolveOptionsContext{},
	)

	_, err := context.Process(ctx, asset.NewSource(fs.NewPath(filesystem, "widget.custom")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "custom module type")
}

func TestEmitWritesEveryReachableAsset(t *testing.T) {
	filesystem := newRecordingFileSystem(t, map[string]string{
		"main.js": "import \"./util.js\";\n",
		"util.js": "export {};\n",
	})
	ctx := newRunContext()
	context := testContext(filesystem, nil)

	module, err := context.Process(ctx, asset.NewSource(fs.NewPath(filesystem, "main.js")))
	require.NoError(t, err)
	require.NoError(t, Emit(ctx, module))
	assert.Equal(t, []string{"main.js", "util.js"}, filesystem.writtenPaths())
}

func TestEmitSurvivesImportCycles(t *testing.T) {
	filesystem := newRecordingFileSystem(t, map[string]string{
		"a.js": "import \"./b.js\";\n",
		"b.js": "import \"./a.js\";\n",
	})
	ctx := newRunContext()
	context := testContext(filesystem, nil)

	module, err := context.Process(ctx, asset.NewSource(fs.NewPath(filesystem, "a.js")))
	require.NoError(t, err)
	require.NoError(t, Emit(ctx, module))
	assert.Equal(t, []string{"a.js", "b.js"}, filesystem.writtenPaths())
}

func TestEmitWithCompletionContainment(t *testing.T) {
	filesystem := newRecordingFileSystem(t, map[string]string{
		"bundle/main.js":  "import \"./chunk.js\";\nimport \"../outside.js\";\n",
		"bundle/chunk.js": "export {};\n",
		"outside.js":      "export {};\n",
	})
	ctx := newRunContext()
	context := testContext(filesystem, nil)

	module, err := context.Process(ctx, asset.NewSource(fs.NewPath(filesystem, "bundle/main.js")))
	require.NoError(t, err)
	require.NoError(t, EmitWithCompletion(ctx, module, fs.NewPath(filesystem, "bundle")))
	assert.Equal(t, []string{"bundle/chunk.js", "bundle/main.js"}, filesystem.writtenPaths(),
		"assets outside the output directory are skipped")
}

func TestMostReferenced(t *testing.T) {
	filesystem := newRecordingFileSystem(t, map[string]string{
		"main.js":   "import \"./a.js\";\nimport \"./b.js\";\n",
		"a.js":      "import \"./shared.js\";\n",
		"b.js":      "import \"./shared.js\";\n",
		"shared.js": "export {};\n",
	})
	ctx := newRunContext()
	context := testContext(filesystem, nil)

	module, err := context.Process(ctx, asset.NewSource(fs.NewPath(filesystem, "main.js")))
	require.NoError(t, err)

	var output bytes.Buffer
	require.NoError(t, PrintMostReferenced(ctx, module, &output))
	assert.Contains(t, output.String(), "TOP REFERENCES:")
	assert.Contains(t, output.String(), "/shared.js -> 2 times referenced")
}

func TestAggregateCoversTheGraph(t *testing.T) {
	files := map[string]string{"main.js": ""}
	imports := ""
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		files[name+".js"] = "export {};\n"
		imports += "import \"./" + name + ".js\";\n"
	}
	files["main.js"] = imports
	filesystem := newRecordingFileSystem(t, files)
	ctx := newRunContext()
	context := testContext(filesystem, nil)

	module, err := context.Process(ctx, asset.NewSource(fs.NewPath(filesystem, "main.js")))
	require.NoError(t, err)

	aggregated, err := aggregate(ctx, module)
	require.NoError(t, err)

	var leaves []asset.Asset
	var collect func(node *AggregatedGraph)
	collect = func(node *AggregatedGraph) {
		if node.leaf != nil {
			leaves = append(leaves, node.leaf)
			return
		}
		for _, child := range node.children {
			collect(child)
		}
	}
	collect(aggregated)
	assert.Len(t, leaves, 11, "one leaf per reachable asset")
}
