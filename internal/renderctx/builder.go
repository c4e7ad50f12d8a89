package renderctx

import (
	"net/http"

	"github.com/conneroisu/veneer/internal/identity"
)

// Builder is one context-construction strategy.
type Builder interface {
	// CanHandle reports whether this strategy applies to the response.
	CanHandle(res *Response) bool

	// Build produces the per-request portion of the rendering context.
	Build(r *http.Request, res *Response) (map[string]any, error)
}

// Registry is the ordered list of builder strategies. Builders are
// consulted in registration order and the first capable one wins; the
// generic catch-all strategy is always last, so a build never fails to
// find a handler.
type Registry struct {
	global   *Global
	builders []Builder
}

// NewRegistry creates a registry with the given strategies in priority
// order. The generic strategy is appended automatically.
func NewRegistry(global *Global, builders ...Builder) *Registry {
	return &Registry{
		global:   global,
		builders: append(builders, &GenericBuilder{}),
	}
}

// BuildContext assembles the rendering context for one request: the
// global snapshot first, then identity and addressing values, then the
// output of the first capable strategy. Later writes override earlier
// ones.
func (reg *Registry) BuildContext(r *http.Request, res *Response) (map[string]any, error) {
	ctx := make(map[string]any)
	reg.global.Apply(ctx)

	id := identity.FromContext(r.Context())
	ctx["authenticated"] = id != nil
	if id != nil {
		ctx["username"] = id.Name
		ctx["roles"] = id.Roles
	} else {
		ctx["username"] = ""
		ctx["roles"] = []string{}
	}

	ctx["path"] = res.Address.Raw
	ctx["normalizedPath"] = res.Address.Normalized()
	ctx["resourceKind"] = res.Address.Kind().String()

	query := r.URL.Query()
	ctx["filter"] = query.Get("filter")
	ctx["sort"] = query.Get("sort")
	ctx["keys"] = query.Get("keys")

	for _, builder := range reg.builders {
		if !builder.CanHandle(res) {
			continue
		}

		values, err := builder.Build(r, res)
		if err != nil {
			return nil, err
		}
		for k, v := range values {
			ctx[k] = v
		}

		return ctx, nil
	}

	// Unreachable: the generic builder claims everything.
	return ctx, nil
}
