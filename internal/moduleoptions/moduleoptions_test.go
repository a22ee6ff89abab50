package moduleoptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/turbopath"
)

func testPath(name string) fs.Path {
	return fs.NewPath(fs.NewInMemoryFileSystem("test"), turbopath.AnchoredUnixPathFromUpstream(name))
}

func TestModuleTypeDispatch(t *testing.T) {
	options := New(testPath(""), &OptionsContext{EnableTypescript: true})

	testCases := []struct {
		path     string
		expected ModuleTypeKind
	}{
		{path: "a.json", expected: ModuleTypeJSON},
		{path: "src/deep/config.json", expected: ModuleTypeJSON},
		{path: "styles.css", expected: ModuleTypeCSS},
		{path: "app.js", expected: ModuleTypeEcmascript},
		{path: "app.mjs", expected: ModuleTypeEcmascript},
		{path: "component.jsx", expected: ModuleTypeEcmascript},
		{path: "app.ts", expected: ModuleTypeTypescript},
		{path: "component.tsx", expected: ModuleTypeTypescript},
		{path: "util.d.ts", expected: ModuleTypeTypescriptDeclaration},
		{path: "logo.png", expected: ModuleTypeStatic},
		{path: "font.woff2", expected: ModuleTypeStatic},
		{path: "LICENSE", expected: ModuleTypeRaw},
		{path: "notes.txt", expected: ModuleTypeRaw},
	}

	for _, tc := range testCases {
		moduleType := options.ModuleTypeFor(testPath(tc.path))
		assert.Equal(t, tc.expected, moduleType.Kind, tc.path)
	}
}

func TestTypescriptDisabledFallsThrough(t *testing.T) {
	options := New(testPath(""), &OptionsContext{})
	assert.Equal(t, ModuleTypeRaw, options.ModuleTypeFor(testPath("app.ts")).Kind)
}

func TestLaterRulesOverrideEarlier(t *testing.T) {
	override := MustRule("**.json", map[EffectKey]Effect{
		EffectKeyModuleType: {ModuleType: &ModuleType{Kind: ModuleTypeRaw}},
	})
	options := New(testPath(""), &OptionsContext{ExtraRules: []Rule{override}})
	assert.Equal(t, ModuleTypeRaw, options.ModuleTypeFor(testPath("a.json")).Kind)
}

func TestInvalidRulePattern(t *testing.T) {
	_, err := NewRule("[", nil)
	assert.Error(t, err)
}

func TestTransformsTravelWithTheType(t *testing.T) {
	rule := MustRule("**.ts", map[EffectKey]Effect{
		EffectKeyModuleType: {ModuleType: &ModuleType{Kind: ModuleTypeTypescript, Transforms: []string{"strip-types"}}},
	})
	options := &Options{Rules: []Rule{rule}}
	moduleType := options.ModuleTypeFor(testPath("app.ts"))
	assert.Equal(t, ModuleTypeTypescript, moduleType.Kind)
	assert.Equal(t, []string{"strip-types"}, moduleType.Transforms)
}
