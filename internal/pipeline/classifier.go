// Package pipeline orchestrates response negotiation: it classifies each
// request/response pair into a final disposition, buffers the inner API
// response so the underlying API is never broken for non-document
// clients, and renders documents, fragments, or error pages as the
// classification demands.
package pipeline

import (
	"net/http"

	"github.com/conneroisu/veneer/internal/capability"
	"github.com/conneroisu/veneer/internal/resolver"
	"github.com/conneroisu/veneer/internal/store"
)

// Disposition is the terminal state of the per-request classification
// machine. Every request starts Undetermined and reaches exactly one
// terminal state.
type Disposition int

const (
	Undetermined Disposition = iota
	PassThrough
	RenderError
	RenderSuccess
)

// String returns the string representation of the disposition.
func (d Disposition) String() string {
	switch d {
	case PassThrough:
		return "pass_through"
	case RenderError:
		return "render_error"
	case RenderSuccess:
		return "render_success"
	default:
		return "undetermined"
	}
}

// Classification is the outcome of classifying one request/response
// pair.
type Classification struct {
	Disposition Disposition

	// EffectiveStatus is the status the client observes. It differs
	// from the inner status for malformed addressing (forced 404) and
	// fragment misses (forced 500).
	EffectiveStatus int

	// Template is the resolved template identifier on RenderSuccess.
	Template string

	// FragmentTarget names the missing fragment target when a strict
	// fragment miss forced RenderError.
	FragmentTarget string
}

// Classify runs the transition table in order. The table is asymmetric
// on purpose: authentication challenges pass through untouched so
// credential negotiation is not disturbed, malformed addressing
// overrides even a successful inner status, a full-page template miss
// degrades silently, and a fragment miss fails loudly.
func Classify(caps capability.Capabilities, status int, addr store.Address, res *resolver.Resolver) Classification {
	if !caps.RenderAsDocument {
		return Classification{Disposition: PassThrough, EffectiveStatus: status}
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return Classification{Disposition: PassThrough, EffectiveStatus: status}
	}

	if status >= 400 {
		return Classification{Disposition: RenderError, EffectiveStatus: status}
	}

	// Structural validity outranks the real status: extra trailing
	// segments force not-found before any template lookup happens.
	if addr.Malformed() {
		return Classification{Disposition: RenderError, EffectiveStatus: http.StatusNotFound}
	}

	if !successful(status) {
		return Classification{Disposition: PassThrough, EffectiveStatus: status}
	}

	if caps.IsFragmentCall && caps.TargetID != "" {
		if name, ok := res.ResolveFragment(addr.Raw, caps.TargetID); ok {
			return Classification{
				Disposition:     RenderSuccess,
				EffectiveStatus: status,
				Template:        name,
			}
		}

		// Strict mode: the client asked for one specific DOM
		// replacement; substituting anything else would corrupt its
		// state.
		return Classification{
			Disposition:     RenderError,
			EffectiveStatus: http.StatusInternalServerError,
			FragmentTarget:  caps.TargetID,
		}
	}

	if name, ok := res.ResolveFullPage(addr.Raw, addr.Kind()); ok {
		return Classification{
			Disposition:     RenderSuccess,
			EffectiveStatus: status,
			Template:        name,
		}
	}

	return Classification{Disposition: PassThrough, EffectiveStatus: status}
}

func successful(status int) bool {
	return status >= 200 && status < 300
}
