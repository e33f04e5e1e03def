package auth

import "errors"

// Account errors. At the HTTP boundary, ErrUserNotFound and
// ErrInvalidCredentials collapse into one generic rejection so responses
// cannot be used to enumerate accounts; the distinction exists for logs.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Email verification errors.
var (
	ErrInvalidVerificationCode = errors.New("invalid verification code")
)

// OAuth errors.
var (
	ErrInvalidOAuthState       = errors.New("invalid oauth state")
	ErrInvalidOAuthCode        = errors.New("invalid oauth code")
	ErrUnverifiedProviderEmail = errors.New("email not verified by provider")
)
