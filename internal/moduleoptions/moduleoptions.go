// Package moduleoptions maps file paths to module types. A rule list
// is evaluated against each path; matching rules merge their effects,
// later rules overriding earlier ones per effect key.
package moduleoptions

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/vercel/turbopack/cli/internal/fs"
)

// ModuleTypeKind tags the typed wrapper a raw asset gets.
type ModuleTypeKind int

// The module type kinds.
const (
	ModuleTypeRaw ModuleTypeKind = iota
	ModuleTypeEcmascript
	ModuleTypeTypescript
	ModuleTypeTypescriptDeclaration
	ModuleTypeJSON
	ModuleTypeCSS
	ModuleTypeStatic
	ModuleTypeCustom
)

// String names the kind for task keys and diagnostics.
func (k ModuleTypeKind) String() string {
	switch k {
	case ModuleTypeRaw:
		return "raw"
	case ModuleTypeEcmascript:
		return "ecmascript"
	case ModuleTypeTypescript:
		return "typescript"
	case ModuleTypeTypescriptDeclaration:
		return "typescript declaration"
	case ModuleTypeJSON:
		return "json"
	case ModuleTypeCSS:
		return "css"
	case ModuleTypeStatic:
		return "static"
	case ModuleTypeCustom:
		return "custom"
	}
	return "unknown"
}

// ModuleType selects a typed wrapper plus the transform chain the
// wrapper applies. Transforms are opaque to the graph core.
type ModuleType struct {
	Kind       ModuleTypeKind
	Transforms []string
}

// TaskKey implements tasks.Keyable.
func (t ModuleType) TaskKey() string {
	return "moduleType(" + t.Kind.String() + ";" + strings.Join(t.Transforms, ",") + ")"
}

// EffectKey keys the effects a rule can contribute.
type EffectKey int

// The effect keys.
const (
	EffectKeyModuleType EffectKey = iota
)

// Effect is a single contribution from a matching rule.
type Effect struct {
	ModuleType *ModuleType
}

// Rule pairs a path matcher with the effects it contributes.
type Rule struct {
	matcher glob.Glob
	pattern string
	effects map[EffectKey]Effect
}

// NewRule compiles a glob pattern into a rule. An invalid pattern is a
// configuration error surfaced to the caller.
func NewRule(pattern string, effects map[EffectKey]Effect) (Rule, error) {
	matcher, err := glob.Compile(pattern, '/')
	if err != nil {
		return Rule{}, errors.Wrapf(err, "invalid module rule pattern %q", pattern)
	}
	return Rule{matcher: matcher, pattern: pattern, effects: effects}, nil
}

// MustRule is NewRule for the statically known default patterns.
func MustRule(pattern string, effects map[EffectKey]Effect) Rule {
	rule, err := NewRule(pattern, effects)
	if err != nil {
		panic(err)
	}
	return rule
}

// Matches reports whether the rule applies to the path.
func (r Rule) Matches(path fs.Path) bool {
	return r.matcher.Match(path.ToString())
}

// Effects returns the rule's contributions.
func (r Rule) Effects() map[EffectKey]Effect {
	return r.effects
}

func moduleTypeEffects(kind ModuleTypeKind, transforms ...string) map[EffectKey]Effect {
	return map[EffectKey]Effect{
		EffectKeyModuleType: {ModuleType: &ModuleType{Kind: kind, Transforms: transforms}},
	}
}

// OptionsContext is the knob set a ModuleAssetContext carries;
// concrete rules are computed from it per context path.
type OptionsContext struct {
	// EnableTypescript wires the *.ts/*.tsx rules; without it
	// TypeScript sources fall through to Raw.
	EnableTypescript bool
	// ExtraRules are appended after the defaults and therefore win
	// on conflicting effect keys.
	ExtraRules []Rule
}

// TaskKey implements tasks.Keyable.
func (c *OptionsContext) TaskKey() string {
	if c == nil {
		return "moduleOptionsContext(nil)"
	}
	ts := "ts:off"
	if c.EnableTypescript {
		ts = "ts:on"
	}
	patterns := make([]string, len(c.ExtraRules))
	for index, rule := range c.ExtraRules {
		patterns[index] = rule.pattern
	}
	return "moduleOptionsContext(" + ts + ";" + strings.Join(patterns, ",") + ")"
}

// Options is the evaluated rule list for one context path.
type Options struct {
	Rules []Rule
}

// New computes the rule list for a context path. The context path is
// accepted for parity with per-directory rule sources even though the
// default rules don't depend on it.
func New(contextPath fs.Path, optionsContext *OptionsContext) *Options {
	rules := []Rule{
		MustRule("**.json", moduleTypeEffects(ModuleTypeJSON)),
		MustRule("**.css", moduleTypeEffects(ModuleTypeCSS)),
		MustRule("**.{js,mjs,cjs,jsx}", moduleTypeEffects(ModuleTypeEcmascript)),
		MustRule("**.{png,jpg,jpeg,gif,svg,ico,woff,woff2}", moduleTypeEffects(ModuleTypeStatic)),
	}
	if optionsContext != nil && optionsContext.EnableTypescript {
		rules = append(rules,
			MustRule("**.{ts,tsx}", moduleTypeEffects(ModuleTypeTypescript)),
			MustRule("**.d.ts", moduleTypeEffects(ModuleTypeTypescriptDeclaration)),
		)
	}
	if optionsContext != nil {
		rules = append(rules, optionsContext.ExtraRules...)
	}
	return &Options{Rules: rules}
}

// ModuleTypeFor walks the rules, merges the effects of every matching
// rule, and returns the selected module type. Absence of a ModuleType
// effect means Raw.
func (o *Options) ModuleTypeFor(path fs.Path) ModuleType {
	effects := map[EffectKey]Effect{}
	for _, rule := range o.Rules {
		if rule.Matches(path) {
			for key, effect := range rule.Effects() {
				effects[key] = effect
			}
		}
	}
	if effect, ok := effects[EffectKeyModuleType]; ok && effect.ModuleType != nil {
		return *effect.ModuleType
	}
	return ModuleType{Kind: ModuleTypeRaw}
}
