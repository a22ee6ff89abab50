package asset

import "strings"

// Request is an import specifier as written in source: "./util",
// "../styles.css", "lodash".
type Request struct {
	Specifier string
}

// NewRequest wraps a raw specifier.
func NewRequest(specifier string) Request {
	return Request{Specifier: specifier}
}

// IsRelative reports whether the request is resolved against the
// importing file rather than against a module registry.
func (r Request) IsRelative() bool {
	return strings.HasPrefix(r.Specifier, "./") || strings.HasPrefix(r.Specifier, "../")
}

// TaskKey implements tasks.Keyable.
func (r Request) TaskKey() string {
	return "request(" + r.Specifier + ")"
}

// ResolveOptions controls one resolution: which extensions are probed
// and whether TypeScript sibling lookups are enabled.
type ResolveOptions struct {
	// Extensions are tried in order when the request has none.
	Extensions []string
	// EnableTypescript records whether the options were computed for a
	// typescript-enabled context. It is part of the task key; the types
	// lookup edge itself is attached by the AssetContext from its own
	// ResolveOptionsContext.
	EnableTypescript bool
}

// TaskKey implements tasks.Keyable.
func (o *ResolveOptions) TaskKey() string {
	ts := "ts:off"
	if o.EnableTypescript {
		ts = "ts:on"
	}
	return "resolveOptions(" + strings.Join(o.Extensions, ",") + ";" + ts + ")"
}

// ResolveOptionsContext is the user-facing knob set an AssetContext
// carries; concrete ResolveOptions are computed from it per context
// path.
type ResolveOptionsContext struct {
	EnableTypescript bool
	// ExtraExtensions are probed after the defaults.
	ExtraExtensions []string
}

// TaskKey implements tasks.Keyable.
func (c *ResolveOptionsContext) TaskKey() string {
	if c == nil {
		return "resolveOptionsContext(nil)"
	}
	ts := "ts:off"
	if c.EnableTypescript {
		ts = "ts:on"
	}
	return "resolveOptionsContext(" + ts + ";" + strings.Join(c.ExtraExtensions, ",") + ")"
}

// WithTypescriptEnabled returns a context with typescript resolving
// switched on, sharing the receiver when it already is.
func (c *ResolveOptionsContext) WithTypescriptEnabled() *ResolveOptionsContext {
	if c.EnableTypescript {
		return c
	}
	return &ResolveOptionsContext{
		EnableTypescript: true,
		ExtraExtensions:  c.ExtraExtensions,
	}
}
