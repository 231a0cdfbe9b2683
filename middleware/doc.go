// Package middleware exposes the HTTP integration for authgate: the
// per-request identity resolvers and the dual-pipeline chain dispatcher.
//
// # Dispatch
//
// [Dispatcher] routes each request, by longest path-prefix match, to exactly
// one [Pipeline]. A pipeline runs its resolver stage once (bearer token for
// the stateless pipeline, session cookie for the session pipeline) and then
// evaluates an explicit ordered table of [Rule] values (first matching rule
// wins) to decide public, authenticated, or role-restricted access. The
// resolver stages never reject a request themselves; rejection is the rule
// table's job.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself; token verification and session
// resolution are delegated to authgate.Engine.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond the configured rule tables.
package middleware
