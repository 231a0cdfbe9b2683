package authgate

import (
	"context"
	"errors"

	"github.com/authgate-dev/authgate/session"
)

// SessionLogin verifies the supplied credentials and establishes a
// server-side session (the interactive pipeline's login flow). With
// single-session enabled, the new session supersedes the account's previous
// one.
func (e *Engine) SessionLogin(ctx context.Context, req AuthenticationRequest) (AuthenticationResponse, error) {
	user, err := e.verifyCredentials(ctx, req)
	if err != nil {
		return AuthenticationResponse{}, err
	}
	return e.issueSession(ctx, user)
}

// SessionRegister creates an account and immediately establishes a session
// for it, mirroring the interactive registration flow.
func (e *Engine) SessionRegister(ctx context.Context, req RegisterRequest) (AuthenticationResponse, error) {
	user, err := e.CreateAccount(ctx, req)
	if err != nil {
		return AuthenticationResponse{}, err
	}
	return e.issueSession(ctx, user)
}

func (e *Engine) issueSession(ctx context.Context, user User) (AuthenticationResponse, error) {
	sessionID, err := e.registry.Register(ctx, user.Email)
	if err != nil {
		if errors.Is(err, session.ErrUsernameRequired) {
			err = ErrUsernameRequired
		}
		return AuthenticationResponse{}, err
	}

	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSessionCreated, true, user.Email, sessionID, nil, nil)

	return AuthenticationResponse{
		Credential: SessionCredential(sessionID),
		Email:      user.Email,
		Firstname:  user.Firstname,
		Lastname:   user.Lastname,
		Role:       user.Role,
	}, nil
}

// RegisterSession creates a session for an already-verified username, without
// running credential checks. Returns [ErrUsernameRequired] for an empty
// username.
func (e *Engine) RegisterSession(ctx context.Context, username string) (string, error) {
	if e == nil || e.registry == nil {
		return "", ErrEngineNotReady
	}
	sessionID, err := e.registry.Register(ctx, username)
	if err != nil {
		if errors.Is(err, session.ErrUsernameRequired) {
			return "", ErrUsernameRequired
		}
		return "", err
	}
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSessionCreated, true, username, sessionID, nil, nil)
	return sessionID, nil
}

// ResolveSession maps a session identifier to its identity, re-loading the
// account so role changes take effect on the next request. ok is false for
// unknown or expired identifiers and for identifiers whose account vanished:
// the caller treats the request as unauthenticated, it is not an error.
func (e *Engine) ResolveSession(ctx context.Context, sessionID string) (Identity, bool) {
	if e == nil || e.registry == nil {
		return Identity{}, false
	}

	username, ok := e.registry.Resolve(ctx, sessionID)
	if !ok {
		e.metricInc(MetricSessionMissing)
		return Identity{}, false
	}

	user, err := e.userStore.FindByEmail(ctx, username)
	if err != nil {
		e.metricInc(MetricSessionMissing)
		return Identity{}, false
	}

	e.metricInc(MetricSessionResolved)
	return Identity{Username: user.Email, Roles: []Role{user.Role}}, true
}

// SessionRefresh extends the session's expiry window as a side effect of
// active use (sliding-window expiry). No-op for empty or unknown identifiers
// and for fallback-only sessions; never fails.
func (e *Engine) SessionRefresh(ctx context.Context, sessionID string) {
	if e == nil || e.registry == nil || sessionID == "" {
		return
	}
	e.registry.Refresh(ctx, sessionID)
	e.metricInc(MetricSessionRefreshed)
}

// SessionLogout destroys the session in both stores. No-op for empty
// identifiers; never fails.
func (e *Engine) SessionLogout(ctx context.Context, sessionID string) {
	if e == nil || e.registry == nil || sessionID == "" {
		return
	}
	e.registry.Invalidate(ctx, sessionID)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventSessionInvalidated, true, "", sessionID, nil, nil)
}

// VerifyToken verifies a bearer token and returns the identity it asserts.
// Returns [ErrTokenInvalid] for anything that does not verify.
func (e *Engine) VerifyToken(token string) (Identity, error) {
	if e == nil || e.tokens == nil {
		return Identity{}, ErrEngineNotReady
	}
	claims, err := e.tokens.Verify(token)
	if err != nil {
		e.metricInc(MetricTokenRejected)
		return Identity{}, ErrTokenInvalid
	}
	return Identity{Username: claims.Email, Roles: []Role{Role(claims.Role)}}, nil
}
