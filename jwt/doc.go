// Package jwt manages bearer-token issuance and verification for the
// stateless authentication pipeline, with strict signing-method pinning and
// clock-skew limits. The token format is opaque to the rest of the module:
// callers only see issue(identity) and verify(token).
package jwt
