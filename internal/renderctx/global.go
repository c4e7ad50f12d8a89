package renderctx

// Global is the process-wide rendering context: version and build
// metadata, login URL, and any other values injected at startup.
//
// A Global is an immutable snapshot. It is constructed once during
// configuration, applied first into every per-request context build, and
// never mutated per-request, so concurrent reads need no synchronization.
type Global struct {
	values map[string]any
}

// NewGlobal snapshots the given values.
func NewGlobal(values map[string]any) *Global {
	snapshot := make(map[string]any, len(values))
	for k, v := range values {
		snapshot[k] = v
	}

	return &Global{values: snapshot}
}

// Apply copies the global values into a per-request context. Callers
// apply the global first so per-request writes override it.
func (g *Global) Apply(ctx map[string]any) {
	if g == nil {
		return
	}
	for k, v := range g.values {
		ctx[k] = v
	}
}
