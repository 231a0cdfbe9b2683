// Package httpapi exposes the authentication engine over HTTP: the JSON
// account and session endpoints, plus a router that mounts them behind the
// dual-pipeline dispatcher.
//
// The stateless surface lives under /api/v1/auth/ and answers with bearer
// tokens. The session surface lives under /ui/auth/session/ and answers with
// opaque session identifiers, additionally set as the SESSION_ID cookie for
// browser flows.
//
// # What this package must NOT do
//
//   - Authenticate requests; the middleware pipelines do that.
//   - Leak which part of a credential was wrong; failed logins answer with a
//     single generic message.
package httpapi
