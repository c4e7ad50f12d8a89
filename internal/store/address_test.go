package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conneroisu/veneer/internal/resolver"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		path      string
		kind      resolver.Kind
		malformed bool
	}{
		{"/", resolver.KindRoot, false},
		{"", resolver.KindRoot, false},
		{"/acme", resolver.KindContainer, false},
		{"/acme/products", resolver.KindContainer, false},
		{"/acme/products/42", resolver.KindItem, false},
		{"/acme/products/42/extra", resolver.KindItem, true},
		{"/acme/products/42/extra/more", resolver.KindItem, true},
		{"/_internal", resolver.KindOther, false},
		{"/acme/_fragments", resolver.KindOther, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			addr := ParseAddress(tt.path)
			assert.Equal(t, tt.kind, addr.Kind())
			assert.Equal(t, tt.malformed, addr.Malformed())
		})
	}
}

func TestAddressSegments(t *testing.T) {
	addr := ParseAddress("/acme/products/42/x/y")

	assert.Equal(t, "acme", addr.Partition)
	assert.Equal(t, "products", addr.Collection)
	assert.Equal(t, "42", addr.ItemID)
	assert.Equal(t, []string{"x", "y"}, addr.Extra)
	assert.Equal(t, "acme/products/42/x/y", addr.Normalized())
	assert.Equal(t, "acme", addr.Tenant())
}

func TestAddressListingPredicates(t *testing.T) {
	assert.True(t, ParseAddress("/").IsPartitionListing())
	assert.False(t, ParseAddress("/acme").IsPartitionListing())

	assert.True(t, ParseAddress("/acme").IsCollectionListing())
	assert.False(t, ParseAddress("/acme/products").IsCollectionListing())
}
