package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/auth"
	"github.com/churchsite/backend/internal/metrics"
)

// Authentication failure messages
const (
	MsgAuthRequired    = "authentication required"
	MsgMalformedHeader = "malformed authorization header"
	MsgTokenExpired    = "token expired"
	MsgInvalidToken    = "invalid token"
)

const accessTokenCookie = "access_token"

// TokenValidator verifies access tokens
type TokenValidator interface {
	// Method ValidateAccessToken verifies signature and expiry and returns the token's identity.
	//
	// The returned error wraps auth.ErrTokenMalformed, auth.ErrTokenExpired or auth.ErrTokenInvalid.
	ValidateAccessToken(token string) (auth.Identity, error)
}

// AuthMode selects what happens to requests without a credential
type AuthMode int

const (
	// Strict rejects requests without a credential with 401
	Strict AuthMode = iota
	// Lenient lets requests without a credential through as guests, with no identity attached
	Lenient
)

// AuthMiddleware verifies the bearer credential of a request and attaches its identity to the context.
// A credential that is present but malformed, expired or invalid is rejected with 401 in both modes.
func AuthMiddleware(validator TokenValidator, mode AuthMode, recorder metrics.Recorder) func(http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractToken(r)
			if err != nil {
				reject(w, recorder, MsgMalformedHeader)
				return
			}

			if token == "" {
				if mode == Lenient {
					next.ServeHTTP(w, r)
					return
				}
				reject(w, recorder, MsgAuthRequired)
				return
			}

			identity, err := validator.ValidateAccessToken(token)
			if err != nil {
				reject(w, recorder, classifyTokenError(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAuth is the strict authentication middleware
func RequireAuth(validator TokenValidator, recorder metrics.Recorder) func(http.Handler) http.Handler {
	return AuthMiddleware(validator, Strict, recorder)
}

// OptionalAuth is the lenient authentication middleware
func OptionalAuth(validator TokenValidator, recorder metrics.Recorder) func(http.Handler) http.Handler {
	return AuthMiddleware(validator, Lenient, recorder)
}

var errMalformedHeader = errors.New(MsgMalformedHeader)

// extractToken reads the token from the Authorization header, falling back to the access_token cookie.
// An empty token with a nil error means no credential was presented.
func extractToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", errMalformedHeader
		}
		return parts[1], nil
	}

	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		return strings.TrimSpace(cookie.Value), nil
	}

	return "", nil
}

// classifyTokenError names a verification failure. A token that does not parse is an invalid
// token; the malformed header message is reserved for headers without the Bearer shape.
func classifyTokenError(err error) string {
	if errors.Is(err, auth.ErrTokenExpired) {
		return MsgTokenExpired
	}
	return MsgInvalidToken
}

func reject(w http.ResponseWriter, recorder metrics.Recorder, message string) {
	recorder.RecordAuthFailure(message)
	apperrors.Write(w, nil, apperrors.Unauthenticated(message))
}
