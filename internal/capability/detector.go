// Package capability classifies inbound requests as document-seeking
// and/or fragment-seeking.
//
// Detection is a pure function over three request headers: the Accept
// header, the progressive-enhancement signal header (HX-Request), and the
// fragment target header (HX-Target). Progressive-enhancement client
// libraries typically send a wildcard Accept but set HX-Request, so the
// wildcard counts as document-seeking only when that signal is present.
package capability

import (
	"net/http"
	"strings"
)

const (
	// DocumentMediaType is the media type that marks a request as
	// document-seeking when listed in Accept.
	DocumentMediaType = "text/html"

	// FragmentHeader asserts a progressive-enhancement partial-update
	// call.
	FragmentHeader = "HX-Request"

	// TargetHeader carries the DOM target identifier of a fragment call.
	TargetHeader = "HX-Target"
)

// Capabilities is the detector's classification of one request.
type Capabilities struct {
	// RenderAsDocument is true when the response should be rendered as a
	// document rather than passed through as structured data.
	RenderAsDocument bool

	// IsFragmentCall is true when the request is a partial-update call
	// requiring strict fragment resolution.
	IsFragmentCall bool

	// TargetID is the fragment target identifier, with any leading "#"
	// stripped. Empty when absent.
	TargetID string
}

// Detect classifies a request from its raw header values.
func Detect(accept, fragmentSignal, target string) Capabilities {
	caps := Capabilities{
		IsFragmentCall: fragmentSignal != "",
		TargetID:       strings.TrimPrefix(strings.TrimSpace(target), "#"),
	}

	caps.RenderAsDocument = acceptsDocument(accept) ||
		(caps.IsFragmentCall && acceptsAnything(accept))

	return caps
}

// DetectRequest classifies an *http.Request.
func DetectRequest(r *http.Request) Capabilities {
	return Detect(
		r.Header.Get("Accept"),
		r.Header.Get(FragmentHeader),
		r.Header.Get(TargetHeader),
	)
}

// acceptsDocument reports whether the Accept header lists the document
// media type. Quality parameters are ignored: listing text/html at all is
// taken as document intent.
func acceptsDocument(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaRange := strings.TrimSpace(part)
		if i := strings.IndexByte(mediaRange, ';'); i >= 0 {
			mediaRange = strings.TrimSpace(mediaRange[:i])
		}
		if strings.EqualFold(mediaRange, DocumentMediaType) {
			return true
		}
	}

	return false
}

// acceptsAnything reports whether the Accept header is a wildcard. An
// absent Accept header means the client accepts anything.
func acceptsAnything(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return true
	}
	for _, part := range strings.Split(accept, ",") {
		mediaRange := strings.TrimSpace(part)
		if i := strings.IndexByte(mediaRange, ';'); i >= 0 {
			mediaRange = strings.TrimSpace(mediaRange[:i])
		}
		if mediaRange == "*/*" {
			return true
		}
	}

	return false
}
