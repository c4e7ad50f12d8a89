package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/conneroisu/veneer/internal/identity"
)

// withIdentity resolves basic-auth credentials into an identity on the
// request context. Resolution never rejects a request: anonymous and
// wrongly-credentialed callers proceed without an identity, and the
// layers above decide what that means (context keys, tenancy filtering).
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := s.resolveIdentity(r); id != nil {
			r = r.WithContext(identity.WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) resolveIdentity(r *http.Request) *identity.Identity {
	name, password, ok := r.BasicAuth()
	if !ok {
		return nil
	}

	user, ok := s.config.Server.Users[name]
	if !ok {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(user.Password)) != 1 {
		return nil
	}

	return &identity.Identity{
		Name:   name,
		Roles:  user.Roles,
		Tenant: user.Tenant,
	}
}
