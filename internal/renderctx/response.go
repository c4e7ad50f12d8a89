// Package renderctx builds per-request rendering contexts.
//
// A rendering context is a string-keyed mapping assembled fresh for every
// request by merging the process-wide global context with per-request
// values; later writes override earlier ones and the mapping is discarded
// once the response is sent. Context construction is pluggable: an
// ordered chain of builder strategies is consulted and the first capable
// one wins, with a catch-all generic strategy always last.
package renderctx

import (
	"context"
	"net/http"

	"github.com/conneroisu/veneer/internal/store"
)

// Response is the inner API response the pipeline captured before
// deciding how to answer the client. Builders derive the rendering
// context from it.
type Response struct {
	// Status and Header are the inner responder's status and headers.
	Status int
	Header http.Header

	// Body is the serialized response body.
	Body []byte

	// Address is the structural interpretation of the request path.
	Address store.Address

	// Result is the native document-store payload, when the response
	// originates from the store. Nil otherwise.
	Result *store.Result
}

// Carrier lets the inner API handler hand its native store payload up to
// the pipeline without widening http.ResponseWriter. The pipeline plants
// a carrier in the request context; the handler fills it.
type Carrier struct {
	Result *store.Result
}

type carrierKey struct{}

// WithCarrier returns a context carrying a fresh Carrier, and the
// carrier itself.
func WithCarrier(ctx context.Context) (context.Context, *Carrier) {
	c := &Carrier{}
	return context.WithValue(ctx, carrierKey{}, c), c
}

// CarrierFrom returns the carrier planted in the context, or nil when
// the request did not pass through the pipeline.
func CarrierFrom(ctx context.Context) *Carrier {
	c, _ := ctx.Value(carrierKey{}).(*Carrier)
	return c
}
