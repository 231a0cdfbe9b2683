package middleware

import (
	"context"

	"github.com/authgate-dev/authgate"
)

type contextKey struct{ name string }

var identityKey = &contextKey{"identity"}

// withIdentity returns a copy of ctx carrying the resolved identity.
func withIdentity(ctx context.Context, id authgate.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached by a resolver stage,
// or ok=false if the request was never authenticated.
func IdentityFromContext(ctx context.Context) (authgate.Identity, bool) {
	id, ok := ctx.Value(identityKey).(authgate.Identity)
	return id, ok
}
