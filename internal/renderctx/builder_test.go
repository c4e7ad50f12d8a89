package renderctx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/veneer/internal/identity"
	"github.com/conneroisu/veneer/internal/store"
)

// claimingBuilder claims everything and returns fixed values.
type claimingBuilder struct {
	values map[string]any
	calls  int
}

func (c *claimingBuilder) CanHandle(*Response) bool { return true }

func (c *claimingBuilder) Build(*http.Request, *Response) (map[string]any, error) {
	c.calls++
	return c.values, nil
}

// decliningBuilder never claims a response.
type decliningBuilder struct {
	calls int
}

func (d *decliningBuilder) CanHandle(*Response) bool { return false }

func (d *decliningBuilder) Build(*http.Request, *Response) (map[string]any, error) {
	d.calls++
	return nil, nil
}

func plainResponse(path string, body string) *Response {
	return &Response{
		Status:  http.StatusOK,
		Header:  http.Header{},
		Body:    []byte(body),
		Address: store.ParseAddress(path),
	}
}

func TestRegistryFirstCapableBuilderWins(t *testing.T) {
	declined := &decliningBuilder{}
	first := &claimingBuilder{values: map[string]any{"who": "first"}}
	second := &claimingBuilder{values: map[string]any{"who": "second"}}

	reg := NewRegistry(nil, declined, first, second)

	ctx, err := reg.BuildContext(httptest.NewRequest("GET", "/x", nil), plainResponse("/x", `{}`))
	require.NoError(t, err)

	assert.Equal(t, "first", ctx["who"])
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
	assert.Zero(t, declined.calls, "declining builders must not be asked to build")
}

func TestRegistryFallsThroughToGeneric(t *testing.T) {
	reg := NewRegistry(nil, &decliningBuilder{})

	ctx, err := reg.BuildContext(httptest.NewRequest("GET", "/x", nil),
		plainResponse("/x", `{"greeting":"hi"}`))
	require.NoError(t, err)

	assert.Equal(t, "hi", ctx["greeting"])
	assert.Equal(t, `{"greeting":"hi"}`, ctx["rawBody"])
}

func TestRegistryGlobalAppliedFirstAndOverridable(t *testing.T) {
	global := NewGlobal(map[string]any{
		"version":  "1.2.3",
		"loginURL": "/login",
		"title":    "Global Title",
	})
	builder := &claimingBuilder{values: map[string]any{"title": "Page Title"}}
	reg := NewRegistry(global, builder)

	ctx, err := reg.BuildContext(httptest.NewRequest("GET", "/x", nil), plainResponse("/x", `{}`))
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", ctx["version"])
	assert.Equal(t, "/login", ctx["loginURL"])
	// Later writes override earlier ones.
	assert.Equal(t, "Page Title", ctx["title"])
}

func TestRegistryIdentityKeys(t *testing.T) {
	reg := NewRegistry(nil)

	t.Run("anonymous", func(t *testing.T) {
		ctx, err := reg.BuildContext(httptest.NewRequest("GET", "/x", nil), plainResponse("/x", `{}`))
		require.NoError(t, err)

		assert.Equal(t, false, ctx["authenticated"])
		assert.Equal(t, "", ctx["username"])
	})

	t.Run("authenticated", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/x", nil)
		r = r.WithContext(identity.WithIdentity(r.Context(),
			&identity.Identity{Name: "jo", Roles: []string{"writer"}}))

		ctx, err := reg.BuildContext(r, plainResponse("/x", `{}`))
		require.NoError(t, err)

		assert.Equal(t, true, ctx["authenticated"])
		assert.Equal(t, "jo", ctx["username"])
		assert.Equal(t, []string{"writer"}, ctx["roles"])
	})
}

func TestRegistryAddressingKeys(t *testing.T) {
	reg := NewRegistry(nil)

	r := httptest.NewRequest("GET", "/acme/products?filter=%7B%7D&sort=-name&keys=name", nil)
	ctx, err := reg.BuildContext(r, plainResponse("/acme/products", `{}`))
	require.NoError(t, err)

	assert.Equal(t, "/acme/products", ctx["path"])
	assert.Equal(t, "acme/products", ctx["normalizedPath"])
	assert.Equal(t, "container", ctx["resourceKind"])
	assert.Equal(t, "{}", ctx["filter"])
	assert.Equal(t, "-name", ctx["sort"])
	assert.Equal(t, "name", ctx["keys"])
}

func TestGenericBuilderMalformedBody(t *testing.T) {
	b := &GenericBuilder{}

	ctx, err := b.Build(httptest.NewRequest("GET", "/x", nil), plainResponse("/x", `not json at all`))
	require.NoError(t, err, "malformed bodies degrade, never error")

	assert.Equal(t, "not json at all", ctx["rawBody"])
	assert.Len(t, ctx, 1)
}

func TestGenericBuilderFlattensTopLevelKeys(t *testing.T) {
	b := &GenericBuilder{}

	ctx, err := b.Build(httptest.NewRequest("GET", "/x", nil),
		plainResponse("/x", `{"a":1,"b":{"nested":true}}`))
	require.NoError(t, err)

	assert.Equal(t, float64(1), ctx["a"])
	assert.Equal(t, map[string]any{"nested": true}, ctx["b"])
	assert.Contains(t, ctx, "rawBody")
}

func TestNormalizeValuePassthrough(t *testing.T) {
	assert.Equal(t, "plain", NormalizeValue("plain"))
	assert.Equal(t, true, NormalizeValue(true))
	assert.Nil(t, NormalizeValue(nil))
}
