package session

import (
	"context"
	"errors"
	"time"

	"github.com/authgate-dev/authgate/internal"
)

// ErrUsernameRequired is returned by [Registry.Register] when the username is
// empty.
var ErrUsernameRequired = errors.New("session: username needs to be provided")

const (
	sessionKeyPrefix = "sid:"
	ownerKeyPrefix   = "user:"
)

// RegistryConfig controls session lifecycle behavior.
type RegistryConfig struct {
	// TTL is the expiry window applied to durable entries at creation and on
	// each refresh (sliding window).
	TTL time.Duration
	// SingleSession makes Register supersede the username's previous session.
	SingleSession bool
	// OnFallback, when set, is invoked once per durable-store failure that
	// degraded to the fallback path.
	OnFallback func()
}

// Registry owns the session lifecycle. It composes the durable store with the
// process-local fallback under a fixed degrade-on-failure policy: identity
// issuance and resolution are never blocked by durable-store unavailability,
// refresh and invalidation become best effort while degraded.
//
// Each public operation is atomic with respect to its own key; the two-store
// arrangement as a whole is not transactional.
type Registry struct {
	durable  Store
	fallback *Fallback
	cfg      RegistryConfig
}

// NewRegistry creates a Registry over the given stores. fallback must be a
// dedicated instance owned by the caller (one per process).
func NewRegistry(durable Store, fallback *Fallback, cfg RegistryConfig) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Registry{durable: durable, fallback: fallback, cfg: cfg}
}

func sessionKey(sessionID string) string { return sessionKeyPrefix + sessionID }
func ownerKey(username string) string    { return ownerKeyPrefix + username }

func (r *Registry) fellBack() {
	if r.cfg.OnFallback != nil {
		r.cfg.OnFallback()
	}
}

// Register creates a fresh session for username and returns its identifier.
// The identifier carries 128 bits of entropy; collisions are treated as
// negligible and not checked. The durable entry is written with the full TTL
// at creation time. On a durable-store error the mapping is recorded in the
// fallback store instead and the call still succeeds.
func (r *Registry) Register(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", ErrUsernameRequired
	}

	sid, err := internal.NewSessionID()
	if err != nil {
		return "", err
	}
	sessionID := sid.String()

	if r.cfg.SingleSession {
		r.supersede(ctx, username)
	}

	if err := r.durable.Put(ctx, sessionKey(sessionID), username, r.cfg.TTL); err != nil {
		r.fellBack()
		_ = r.fallback.Put(ctx, sessionKey(sessionID), username, 0)
		return sessionID, nil
	}

	if r.cfg.SingleSession {
		// Reverse index for the supersede policy. Best effort: losing it only
		// weakens single-session enforcement, never correctness.
		_ = r.durable.Put(ctx, ownerKey(username), sessionID, r.cfg.TTL)
	}

	return sessionID, nil
}

// supersede revokes the username's previous session, if the reverse index
// still knows one.
func (r *Registry) supersede(ctx context.Context, username string) {
	prior, err := r.durable.Get(ctx, ownerKey(username))
	if err != nil || prior == "" {
		return
	}
	_ = r.durable.Delete(ctx, sessionKey(prior))
	_ = r.fallback.Delete(ctx, sessionKey(prior))
}

// Resolve returns the username mapped to sessionID. The fallback store is
// consulted when the durable store errors, and also on a durable miss so that
// sessions issued during an outage stay resolvable after the store recovers.
// ok is false when neither store has the key; that is the normal result for
// expired, invalidated, or never-issued identifiers, not an error.
func (r *Registry) Resolve(ctx context.Context, sessionID string) (username string, ok bool) {
	if sessionID == "" {
		return "", false
	}

	username, err := r.durable.Get(ctx, sessionKey(sessionID))
	switch {
	case err == nil:
		return username, true
	case errors.Is(err, ErrNotFound):
		// fall through to the fallback lookup
	default:
		r.fellBack()
	}

	username, err = r.fallback.Get(ctx, sessionKey(sessionID))
	if err != nil {
		return "", false
	}
	return username, true
}

// Refresh resets the durable entry's expiry window to the full TTL from now
// (sliding-window expiry). It is a silent no-op for empty or unknown
// identifiers, for fallback-only sessions (no TTL concept there), and while
// the durable store is unreachable. It never fails.
func (r *Registry) Refresh(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}

	username, err := r.durable.Get(ctx, sessionKey(sessionID))
	if err != nil {
		return
	}

	_ = r.durable.Expire(ctx, sessionKey(sessionID), r.cfg.TTL)
	if r.cfg.SingleSession {
		_ = r.durable.Expire(ctx, ownerKey(username), r.cfg.TTL)
	}
}

// Invalidate destroys the session in both stores, so sessions issued during
// an outage cannot be resurrected from the fallback after the durable store
// recovers. It is a no-op for empty identifiers and best effort while the
// durable store is unreachable. It never fails.
func (r *Registry) Invalidate(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}

	if username, err := r.durable.Get(ctx, sessionKey(sessionID)); err == nil && r.cfg.SingleSession {
		if owner, err := r.durable.Get(ctx, ownerKey(username)); err == nil && owner == sessionID {
			_ = r.durable.Delete(ctx, ownerKey(username))
		}
	}

	_ = r.durable.Delete(ctx, sessionKey(sessionID))
	_ = r.fallback.Delete(ctx, sessionKey(sessionID))
}

// FallbackLen reports how many entries the fallback store currently holds.
func (r *Registry) FallbackLen() int {
	return r.fallback.Len()
}
