// Package cache decides, per rendered response, between emitting fresh
// bytes and signaling not-modified.
//
// The validator is a fingerprint of the rendered content formatted as a
// quoted ETag. Stability is only required within one process lifetime:
// the fingerprint exists to answer "is this the same bytes I sent you
// last time", not to survive restarts or version upgrades.
package cache

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
)

// Directives emitted with every negotiated response.
const (
	disabledDirectives = "no-store, no-cache, must-revalidate"
	varyValue          = "Accept-Encoding"
)

// Negotiator computes validators and applies caching headers.
type Negotiator struct {
	// Enabled gates conditional caching entirely. When false the
	// negotiator emits strict no-cache directives and never signals
	// not-modified.
	Enabled bool

	// MaxAge is the max-age policy in seconds, used only when enabled.
	MaxAge int
}

// Decision is the outcome of one negotiation.
type Decision struct {
	// NotModified is true when the client's conditional validator
	// matched and no body must be sent.
	NotModified bool

	// ETag is the validator emitted with the response; empty when
	// caching is disabled.
	ETag string
}

// Negotiate applies cache headers to h for a response whose rendered
// content is body, comparing against the request's conditional validator
// (the If-None-Match value, "" when absent).
func (n Negotiator) Negotiate(h http.Header, ifNoneMatch string, body []byte) Decision {
	if !n.Enabled {
		h.Set("Cache-Control", disabledDirectives)
		return Decision{}
	}

	etag := Validator(body)

	h.Set("ETag", etag)
	h.Set("Cache-Control", "private, max-age="+strconv.Itoa(n.MaxAge)+", must-revalidate")
	addVary(h)

	return Decision{
		NotModified: matches(ifNoneMatch, etag),
		ETag:        etag,
	}
}

// Validator computes the quoted content validator for rendered bytes.
// Identical content yields an identical validator within this process.
func Validator(body []byte) string {
	hash := fnv.New64a()
	_, _ = hash.Write(body)

	return fmt.Sprintf("%q", strconv.FormatUint(hash.Sum64(), 16))
}

// matches compares the request's If-None-Match value against the
// computed validator. The value may list several validators; weak
// markers are tolerated.
func matches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}

	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag {
			return true
		}
	}

	return false
}

// addVary ensures the negotiation-variance header includes
// content-encoding variance without discarding pre-existing values.
func addVary(h http.Header) {
	for _, existing := range h.Values("Vary") {
		for _, field := range strings.Split(existing, ",") {
			if strings.EqualFold(strings.TrimSpace(field), varyValue) {
				return
			}
		}
	}

	h.Add("Vary", varyValue)
}
