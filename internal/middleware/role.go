package middleware

import (
	"net/http"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/auth"
)

// MsgInsufficientPermissions is the 403 message of RoleMiddleware
const MsgInsufficientPermissions = "insufficient permissions"

// RoleMiddleware lets a request through only when the identity attached by AuthMiddleware
// has one of roles. Guests satisfy no non-empty role set; an empty set admits every request.
// It must be mounted after AuthMiddleware.
func RoleMiddleware(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(roles) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := auth.FromContext(r.Context())
			if !ok || !identity.HasRole(roles...) {
				apperrors.Write(w, nil, apperrors.Forbidden(MsgInsufficientPermissions))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
