// Package authgate provides a dual-pipeline authentication engine: stateless
// JWT bearer credentials for API clients and Redis-backed server-side sessions
// for browser clients, with a per-request identity resolution filter and an
// explicit path-based chain dispatch policy.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthenticationResponse, Identity, MetricsSnapshot). Session
// persistence lives in the session sub-package, token handling in jwt,
// password hashing in password, and HTTP integration in middleware and
// httpapi. User persistence is supplied by the caller through [UserStore].
//
// # What this package must NOT do
//
//   - Expose Redis clients or store internals in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports authgate (no import cycles).
//
// # Availability contract
//
// Session issuance is never blocked by session-store unavailability: store
// errors degrade to a process-local fallback store instead of propagating to
// callers. The degrade path is an explicit branch in session.Registry, not an
// exception handler, and is observable through MetricStoreFallback.
package authgate
