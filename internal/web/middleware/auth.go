package middleware

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/leads/internal/identity"
	"github.com/JonMunkholm/leads/internal/logging"
)

// ErrorWriter renders an error response. The web package supplies one so
// middleware failures share the handlers' JSON error format.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error, status int)

// RequireSession authenticates the request token and stores the session in
// the request context. Requests without a valid session get 401.
//
// The token is read from "Authorization: Bearer <token>" first, then from
// the cookie named cookieName.
func RequireSession(p identity.Provider, cookieName string, deny ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := p.Authenticate(r.Context(), SessionToken(r, cookieName))
			if err != nil {
				logging.FromContext(r.Context()).Warn("auth: rejected",
					"path", r.URL.Path,
					"method", r.Method,
					"ip", ClientIP(r),
					"error", err,
				)
				deny(w, r, err, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.ContextWithSession(r.Context(), sess)))
		})
	}
}

// SessionToken extracts the raw session token, or "" when none is sent.
func SessionToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
