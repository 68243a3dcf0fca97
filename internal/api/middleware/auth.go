package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/edvin/s3gate/internal/api/response"
	"github.com/edvin/s3gate/internal/core"
)

type contextKey string

const identityKey contextKey = "identity"

// SessionCookieName is the cookie carrying the session token for browser
// clients. API clients use Authorization: Bearer instead.
const SessionCookieName = "s3gate_session"

// Identity is the authenticated user attached to the request context.
type Identity struct {
	UserID string
}

// Auth returns a middleware that resolves the session token (bearer header
// or cookie) to a user. Requests without a valid session get a 401.
func Auth(sessions *core.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing session")
				return
			}

			userID, err := sessions.Authenticate(r.Context(), token)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, &Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken returns the session token from the Authorization header or,
// failing that, the session cookie.
func ExtractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return after
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// GetIdentity returns the authenticated identity, or nil outside the auth
// middleware.
func GetIdentity(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// WithIdentity attaches an identity to the context. Used by tests.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
