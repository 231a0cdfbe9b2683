// Package session provides the session store abstraction and the session
// lifecycle registry for the server-side authentication pipeline.
//
// # Stores
//
// [Store] is a minimal key-value contract with per-key TTL. [RedisStore] is
// the durable store of record; [Fallback] is a process-local, non-expiring
// substitute consulted only while the durable store misbehaves. Store
// operations return explicit errors ([ErrNotFound], [ErrStoreUnavailable]) so
// the degrade policy in [Registry] is a visible branch, not an exception
// handler.
//
// # Registry
//
// [Registry] owns the session lifecycle: Register, Resolve, Refresh,
// Invalidate. A session identifier maps to exactly one username until
// invalidated or expired. Durable-store errors never cross the Registry
// boundary: creation and reads degrade to the fallback store, refresh and
// invalidation become best effort.
//
// # What this package must NOT do
//
//   - Import authgate, jwt, or middleware (no upward imports).
//   - Perform application-level authorization decisions.
//   - Surface store availability errors to callers.
package session
