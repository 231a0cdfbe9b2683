package middleware

import (
	"net/http"
	"strings"

	"github.com/authgate-dev/authgate"
)

// NewSessionResolver returns the identity stage for the session pipeline. For
// each request it reads the session cookie, resolves the session through the
// engine, attaches the identity to the request context, and slides the
// session expiry forward. A cookie the registry no longer recognizes is
// cleared on the response so the browser stops presenting it.
//
// The resolver never terminates a request itself: unauthenticated requests
// continue without an identity and are rejected, or not, by the rule table.
// Requests under /api/ are skipped entirely so a stray browser cookie can
// never authenticate a stateless call.
func NewSessionResolver(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}
			sid, ok := sessionCookie(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			id, ok := engine.ResolveSession(r.Context(), sid)
			if !ok {
				ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}
			engine.SessionRefresh(r.Context(), sid)
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}
