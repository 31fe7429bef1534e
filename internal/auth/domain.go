// Package auth implements request authentication: password and token
// schemes, the bcrypt credential hasher, the bearer token service and
// the HTTP middleware gluing them to the authorization engine.
package auth

import (
	"context"
	"sort"

	"github.com/campusgate/campusgate/internal/rbac"
)

// Principal is a resolved identity: a username plus its granted
// authorities. It is immutable for the duration of a request.
type Principal struct {
	username    string
	authorities map[string]struct{}
}

// NewPrincipal constructs a Principal from a username and authority
// names. Duplicates are collapsed; the slice is not retained.
func NewPrincipal(username string, authorities []string) *Principal {
	set := make(map[string]struct{}, len(authorities))
	for _, a := range authorities {
		set[a] = struct{}{}
	}
	return &Principal{username: username, authorities: set}
}

// Username returns the principal's unique name.
func (p *Principal) Username() string {
	return p.username
}

// HasAuthority reports whether the principal holds the named authority.
func (p *Principal) HasAuthority(name string) bool {
	_, ok := p.authorities[name]
	return ok
}

// Authorities returns the authority names in sorted order.
func (p *Principal) Authorities() []string {
	names := make([]string, 0, len(p.authorities))
	for a := range p.authorities {
		names = append(names, a)
	}
	sort.Strings(names)
	return names
}

var _ rbac.Subject = (*Principal)(nil)

type principalContextKey struct{}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal, nil when the request is
// anonymous.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
