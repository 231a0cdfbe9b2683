package authgate

import "errors"

var (
	// ErrUsernameRequired is returned when session registration is attempted
	// without a username.
	ErrUsernameRequired = errors.New("username needs to be provided")
	// ErrInvalidCredentials is returned for any credential mismatch or unknown
	// account during authentication. The message is deliberately generic so
	// callers cannot distinguish "unknown account" from "wrong password".
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned by [UserStore.FindByEmail] when no account
	// exists for the given email. The Engine translates it to
	// [ErrInvalidCredentials] before it reaches authentication callers.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountExists is returned when registering an email that already has
	// an account.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountCreationInvalid is returned for account creation requests with
	// missing required fields.
	ErrAccountCreationInvalid = errors.New("invalid account creation request")
	// ErrAccountDisabled is returned when the account exists but is disabled.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountLocked is returned when the account exists but is locked.
	ErrAccountLocked = errors.New("account locked")
	// ErrTokenInvalid is returned when a bearer token fails verification.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrEngineNotReady is returned when an Engine method is called before
	// Build completed.
	ErrEngineNotReady = errors.New("engine not initialized")
)
