//go:build property
// +build property

package cache

import (
	"net/http"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestValidatorProperties verifies the content validator over arbitrary
// rendered bodies.
func TestValidatorProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	bodyGen := gen.SliceOf(gen.UInt8())

	// Property: identical content always yields an identical validator
	// within a process.
	properties.Property("validator is stable", prop.ForAll(
		func(body []byte) bool {
			return Validator(body) == Validator(body)
		},
		bodyGen,
	))

	// Property: the externally visible validator is always quoted.
	properties.Property("validator is quoted", prop.ForAll(
		func(body []byte) bool {
			etag := Validator(body)
			return strings.HasPrefix(etag, `"`) && strings.HasSuffix(etag, `"`) && len(etag) > 2
		},
		bodyGen,
	))

	// Property: a response carrying its own validator always negotiates
	// to not-modified when the body is unchanged, and never when caching
	// is disabled.
	properties.Property("round trip negotiation", prop.ForAll(
		func(body []byte, maxAge int) bool {
			enabled := Negotiator{Enabled: true, MaxAge: maxAge}
			first := enabled.Negotiate(http.Header{}, "", body)
			second := enabled.Negotiate(http.Header{}, first.ETag, body)

			disabled := Negotiator{Enabled: false, MaxAge: maxAge}
			third := disabled.Negotiate(http.Header{}, first.ETag, body)

			return second.NotModified && !third.NotModified
		},
		bodyGen,
		gen.IntRange(0, 86400),
	))

	properties.TestingRun(t)
}
