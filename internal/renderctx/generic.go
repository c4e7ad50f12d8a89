package renderctx

import (
	"encoding/json"
	"net/http"
)

// GenericBuilder is the catch-all strategy: it best-effort decodes the
// raw response body as structured data and flattens its top-level keys
// into the rendering context, alongside the raw body text for verbatim
// access. Malformed bodies degrade to an empty mapping, never an error.
type GenericBuilder struct{}

// CanHandle always claims the response; the generic strategy is the
// chain's terminal entry.
func (b *GenericBuilder) CanHandle(res *Response) bool {
	return true
}

// Build flattens the decoded body into the context.
func (b *GenericBuilder) Build(r *http.Request, res *Response) (map[string]any, error) {
	ctx := make(map[string]any)

	var decoded map[string]any
	if err := json.Unmarshal(res.Body, &decoded); err == nil {
		for k, v := range decoded {
			ctx[k] = v
		}
	}

	ctx["rawBody"] = string(res.Body)

	return ctx, nil
}
