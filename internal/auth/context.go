package auth

import (
	"context"
	"slices"
)

type contextKey string

const principalKey contextKey = "poseidon-principal"

// Principal is the authenticated user attached to a request.
type Principal struct {
	ID       int64
	Username string
	Fullname string
	Role     string
}

// HasRole reports whether the principal holds any of roles.
func (p *Principal) HasRole(roles ...string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(roles, p.Role)
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext retrieves the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
