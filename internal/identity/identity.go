// Package identity carries the optional authenticated caller through the
// request context.
//
// Authentication enforcement is not this subsystem's job; an absent
// identity never blocks the pipeline. The identity only feeds rendering
// context keys (authenticated flag, username, roles) and tenant
// filtering.
package identity

import (
	"context"
	"slices"
)

// Identity describes an authenticated caller.
type Identity struct {
	Name   string
	Roles  []string
	Tenant string
}

// HasRole reports whether the identity carries the given role.
func (id *Identity) HasRole(role string) bool {
	if id == nil {
		return false
	}
	return slices.Contains(id.Roles, role)
}

type contextKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity attached to the context, or nil when
// the request is anonymous.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(contextKey{}).(*Identity)
	return id
}
