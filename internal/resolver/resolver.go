// Package resolver maps request paths to template identifiers.
//
// Two search modes exist with deliberately asymmetric miss policies.
// Full-page resolution walks every path level from most specific to root,
// probing an action template ("list" for containers, "view" for items)
// and then "index" at each level; a miss is an expected outcome and the
// caller degrades gracefully to the original structured response.
// Fragment resolution probes exactly two candidate locations and never
// walks ancestors; a miss there is a hard failure, because the client
// requested one specific DOM replacement and silently substituting
// anything else would corrupt its state.
//
// Template existence is re-checked against the engine on every call and
// never cached across requests, so templates can be edited at runtime
// without a restart.
package resolver

import "strings"

// Kind classifies the addressed resource and drives action-specific
// template selection.
type Kind int

const (
	KindRoot Kind = iota
	KindContainer
	KindItem
	KindOther
)

// String returns the string representation of the resource kind.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindContainer:
		return "container"
	case KindItem:
		return "item"
	default:
		return "other"
	}
}

// action returns the action template name implied by the kind, or ""
// when no action applies.
func (k Kind) action() string {
	switch k {
	case KindContainer:
		return "list"
	case KindItem:
		return "view"
	default:
		return ""
	}
}

// fragmentDir is the reserved directory holding fragment templates.
const fragmentDir = "_fragments"

// indexTemplate is the unified template probed at every level after the
// action template.
const indexTemplate = "index"

// TemplateProber is the slice of the templating engine the resolver
// needs. Exists must be safe under concurrent calls and must reflect the
// live template set at the moment of the call.
type TemplateProber interface {
	Exists(name string) bool
}

// Resolver resolves (path, kind, target) tuples to template identifiers.
// Resolution is a pure function of its inputs and live template
// existence; a Resolver holds no per-request state.
type Resolver struct {
	engine TemplateProber
}

// New creates a resolver backed by the given engine.
func New(engine TemplateProber) *Resolver {
	return &Resolver{engine: engine}
}

// ResolveFullPage finds the template for a full-page render of path with
// the given resource kind. It returns the first existing candidate in a
// strict most-specific-first scan: at each level the action template
// ("{level}/list" or "{level}/view") is probed before "{level}/index",
// then the last segment is truncated and the same check repeats at the
// parent, down to the root level. The boolean is false when no candidate
// exists anywhere.
func (r *Resolver) ResolveFullPage(path string, kind Kind) (string, bool) {
	level := Normalize(path)
	action := kind.action()

	for {
		if action != "" {
			if name := join(level, action); r.engine.Exists(name) {
				return name, true
			}
		}

		if name := join(level, indexTemplate); r.engine.Exists(name) {
			return name, true
		}

		if level == "" {
			return "", false
		}
		level = parent(level)
	}
}

// ResolveFragment finds the template for a partial-update render
// targeting targetID under path. At most two locations are probed: the
// path-local fragment directory, then the root-level fragment directory.
// A blank target returns a miss without touching the engine at all.
//
// Callers must treat a miss as a hard failure, never a silent fallback.
func (r *Resolver) ResolveFragment(path, targetID string) (string, bool) {
	if strings.TrimSpace(targetID) == "" {
		return "", false
	}

	if name := join(Normalize(path), join(fragmentDir, targetID)); r.engine.Exists(name) {
		return name, true
	}

	if name := join(fragmentDir, targetID); r.engine.Exists(name) {
		return name, true
	}

	return "", false
}

// Normalize strips leading and trailing separators from a request path.
// The empty string means the root level.
func Normalize(path string) string {
	return strings.Trim(path, "/")
}

func join(level, name string) string {
	if level == "" {
		return name
	}
	return level + "/" + name
}

// parent truncates the last segment of a normalized level. The root
// level's parent is the root level itself; callers terminate on "".
func parent(level string) string {
	if i := strings.LastIndexByte(level, '/'); i >= 0 {
		return level[:i]
	}
	return ""
}
