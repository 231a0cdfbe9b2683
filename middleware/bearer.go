package middleware

import (
	"net/http"
	"strings"

	"github.com/authgate-dev/authgate"
)

const bearerPrefix = "Bearer "

// NewBearerResolver returns the identity stage for the stateless pipeline.
// It makes exactly one verification attempt per request: a missing header,
// malformed scheme, or failed verification all leave the request
// unauthenticated and pass it through to the rule table.
func NewBearerResolver(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if !strings.HasPrefix(raw, bearerPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			id, err := engine.VerifyToken(strings.TrimPrefix(raw, bearerPrefix))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}
