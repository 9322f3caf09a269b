// Package middleware holds the HTTP middleware shared by services: session extraction,
// role gates, request logging and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/vasapolrittideah/zacademy-api/shared/apperror"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "jwt"

var (
	ErrMissingToken      = apperror.New(apperror.KindUnauthorized, "you are not logged in, please log in to get access")
	ErrInsufficientScope = apperror.New(apperror.KindForbidden, "you do not have permission to perform this action")
)

type contextKey struct{}

var principalKey = contextKey{}

// Principal identifies the authenticated caller of a request.
type Principal struct {
	UserID string
	Role   string
}

// AuthenticateFunc resolves a raw session token into the caller it belongs to.
type AuthenticateFunc func(ctx context.Context, token string) (*Principal, error)

// ErrorResponder writes err to the client.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// RequireAuth rejects requests without a valid session token and stores the caller in
// the request context.
func RequireAuth(authenticate AuthenticateFunc, respond ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				respond(w, r, ErrMissingToken)
				return
			}

			principal, err := authenticate(r.Context(), token)
			if err != nil {
				respond(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RestrictTo only lets through callers whose role is one of roles. It must run after
// RequireAuth.
func RestrictTo(respond ErrorResponder, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				respond(w, r, ErrMissingToken)
				return
			}

			if !slices.Contains(roles, principal.Role) {
				respond(w, r, ErrInsufficientScope)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken reads the session token from the Authorization bearer header, falling
// back to the session cookie.
func ExtractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// WithPrincipal returns a copy of ctx carrying principal.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalKey).(*Principal)
	return principal, ok && principal != nil
}
