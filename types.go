package authgate

import (
	"context"
	"time"
)

// Role is the coarse authorization level attached to an account.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "USER"
	// RoleAdmin grants access to admin path prefixes in both pipelines.
	RoleAdmin Role = "ADMIN"
)

// valid reports whether the role is one of the known values.
func (r Role) valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the account record exchanged with [UserStore]. The Engine treats it
// as read-only except during account creation, which it delegates to the
// store.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Firstname    string
	Lastname     string
	Role         Role
	Enabled      bool
	Locked       bool
	CreatedAt    time.Time
}

// UserStore is the persistence boundary the Engine consumes. Implementations
// must be safe for concurrent use. FindByEmail returns [ErrUserNotFound] when
// no account exists; Save returns [ErrAccountExists] on a duplicate email.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user User) (User, error)
}

// RegisterRequest is the input for account creation. Role defaults to
// [RoleUser] when empty.
type RegisterRequest struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
	Role      Role
}

// AuthenticationRequest carries the credentials for a login attempt. It is
// transient and never stored.
type AuthenticationRequest struct {
	Email    string
	Password string
}

// CredentialKind discriminates the two credential variants an
// [AuthenticationResponse] can carry.
type CredentialKind string

const (
	// KindBearer marks a self-verifying stateless token credential.
	KindBearer CredentialKind = "Bearer"
	// KindSession marks an opaque server-side session identifier.
	KindSession CredentialKind = "Session"
)

// Credential is a tagged union of {Bearer(token) | Session(sessionID)}. The
// zero value carries nothing; exactly one variant is populated by the
// constructors, so callers cannot misread an absent field as a valid empty
// credential.
type Credential struct {
	kind  CredentialKind
	value string
}

// BearerCredential wraps a stateless token.
func BearerCredential(token string) Credential {
	return Credential{kind: KindBearer, value: token}
}

// SessionCredential wraps a server-side session identifier.
func SessionCredential(sessionID string) Credential {
	return Credential{kind: KindSession, value: sessionID}
}

// Kind returns the credential variant, or "" for the zero value.
func (c Credential) Kind() CredentialKind {
	return c.kind
}

// Token returns the bearer token. ok is false for the session variant and the
// zero value.
func (c Credential) Token() (token string, ok bool) {
	if c.kind != KindBearer {
		return "", false
	}
	return c.value, true
}

// SessionID returns the session identifier. ok is false for the bearer
// variant and the zero value.
func (c Credential) SessionID() (sessionID string, ok bool) {
	if c.kind != KindSession {
		return "", false
	}
	return c.value, true
}

// AuthenticationResponse is returned by both pipelines. The credential kind
// depends on the pipeline that produced it; the identity fields are common so
// downstream consumers can stay credential-kind-agnostic.
type AuthenticationResponse struct {
	Credential Credential
	Email      string
	Firstname  string
	Lastname   string
	Role       Role
}

// Identity is the resolved principal attached to a single request's lifetime.
// It is derived by re-loading the account after credential or session
// validation and is never persisted or shared across requests.
type Identity struct {
	Username string
	Roles    []Role
}

// HasRole reports whether the identity carries the given role.
func (id *Identity) HasRole(role Role) bool {
	if id == nil {
		return false
	}
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}
