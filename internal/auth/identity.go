// Package auth issues and verifies access tokens and carries the verified identity
// through request contexts.
package auth

import (
	"context"
	"slices"
)

// Role is the role claim of an access token
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePastor Role = "pastor"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

// StaffRoles may manage site content
var StaffRoles = []Role{RoleAdmin, RolePastor}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePastor, RoleMember, RoleGuest:
		return true
	}
	return false
}

// Identity is the caller reconstructed from a verified access token.
// It is never persisted.
type Identity struct {
	UserID int64 `json:"userId"`
	// Role is empty when the token carries no role claim
	Role Role `json:"role,omitempty"`
}

// HasRole reports whether the identity's role is in roles.
// An empty roles list is satisfied by any identity.
func (i Identity) HasRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	if i.Role == "" {
		return false
	}
	return slices.Contains(roles, i.Role)
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity attached by the authentication middleware.
// ok is false for guests, i.e. requests that passed lenient authentication without a token.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// IsStaff reports whether the request context carries an admin or pastor identity
func IsStaff(ctx context.Context) bool {
	id, ok := FromContext(ctx)
	return ok && id.HasRole(StaffRoles...)
}
