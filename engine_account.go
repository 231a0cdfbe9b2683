package authgate

import (
	"context"
	"strings"
	"time"
)

// CreateAccount creates a user account without issuing any credential. The
// request's role defaults to the configured default when empty. Returns
// [ErrAccountExists] when the email is already registered.
func (e *Engine) CreateAccount(ctx context.Context, req RegisterRequest) (User, error) {
	if e == nil || e.userStore == nil {
		return User{}, ErrEngineNotReady
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return User{}, ErrAccountCreationInvalid
	}

	role := req.Role
	if role == "" {
		role = e.config.Account.DefaultRole
	}
	if !role.valid() {
		return User{}, ErrAccountCreationInvalid
	}

	exists, err := e.userStore.ExistsByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if exists {
		e.metricInc(MetricAccountCreationDuplicate)
		e.emitAudit(ctx, auditEventAccountDuplicate, false, email, "", ErrAccountExists, nil)
		return User{}, ErrAccountExists
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		return User{}, err
	}

	user, err := e.userStore.Save(ctx, User{
		Email:        email,
		PasswordHash: hash,
		Firstname:    req.Firstname,
		Lastname:     req.Lastname,
		Role:         role,
		Enabled:      true,
		Locked:       false,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return User{}, err
	}

	e.metricInc(MetricAccountCreationSuccess)
	e.emitAudit(ctx, auditEventAccountCreated, true, email, "", nil, map[string]string{
		"role": string(user.Role),
	})

	return user, nil
}

// Register creates an account and issues a bearer token for it (the stateless
// pipeline's registration flow).
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (AuthenticationResponse, error) {
	user, err := e.CreateAccount(ctx, req)
	if err != nil {
		return AuthenticationResponse{}, err
	}
	return e.issueToken(ctx, user)
}

// Authenticate verifies the supplied credentials and issues a bearer token.
// All verification failures surface as [ErrInvalidCredentials] so callers
// cannot probe for account existence.
func (e *Engine) Authenticate(ctx context.Context, req AuthenticationRequest) (AuthenticationResponse, error) {
	user, err := e.verifyCredentials(ctx, req)
	if err != nil {
		return AuthenticationResponse{}, err
	}
	return e.issueToken(ctx, user)
}

func (e *Engine) issueToken(ctx context.Context, user User) (AuthenticationResponse, error) {
	token, err := e.tokens.Issue(user.Email, string(user.Role))
	if err != nil {
		return AuthenticationResponse{}, err
	}

	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, auditEventTokenIssued, true, user.Email, "", nil, nil)

	return AuthenticationResponse{
		Credential: BearerCredential(token),
		Email:      user.Email,
		Firstname:  user.Firstname,
		Lastname:   user.Lastname,
		Role:       user.Role,
	}, nil
}

// verifyCredentials looks the account up and checks the password and account
// state. Unknown account and wrong password produce the same error.
func (e *Engine) verifyCredentials(ctx context.Context, req AuthenticationRequest) (User, error) {
	if e == nil || e.userStore == nil {
		return User{}, ErrEngineNotReady
	}
	if req.Email == "" || req.Password == "" {
		e.loginFailed(ctx, req.Email, "missing_credentials")
		return User{}, ErrInvalidCredentials
	}

	user, err := e.userStore.FindByEmail(ctx, req.Email)
	if err != nil {
		e.loginFailed(ctx, req.Email, "user_not_found")
		return User{}, ErrInvalidCredentials
	}

	ok, err := e.passwordHash.Verify(req.Password, user.PasswordHash)
	if err != nil || !ok {
		e.loginFailed(ctx, req.Email, "password_mismatch")
		return User{}, ErrInvalidCredentials
	}

	if !user.Enabled {
		e.loginFailed(ctx, req.Email, "account_disabled")
		return User{}, ErrAccountDisabled
	}
	if user.Locked {
		e.loginFailed(ctx, req.Email, "account_locked")
		return User{}, ErrAccountLocked
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.Email, "", nil, nil)

	return user, nil
}

func (e *Engine) loginFailed(ctx context.Context, email, reason string) {
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, email, "", ErrInvalidCredentials, map[string]string{
		"reason": reason,
	})
}
